package tracking

import (
	"time"

	"prodtrack/internal/models"
)

// Both tables are total: any valid status may follow any valid status,
// including itself. Tighten here if the shop floor ever needs a strict order.
var (
	itemTransitions    = totalTable(models.ItemStatuses)
	processTransitions = totalTable(models.ProcessStatuses)
)

func totalTable[S comparable](states []S) map[S]map[S]bool {
	table := make(map[S]map[S]bool, len(states))
	for _, from := range states {
		table[from] = make(map[S]bool, len(states))
		for _, to := range states {
			table[from][to] = true
		}
	}
	return table
}

func CanTransitionItem(from, to models.ItemStatus) bool {
	return itemTransitions[from][to]
}

func CanTransitionProcess(from, to models.ProcessStatus) bool {
	return processTransitions[from][to]
}

// NextProcessState moves p to status and applies the timestamp rules:
// startedAt is set once, on the first entry into IN_PROGRESS; completedAt is
// set on entry into COMPLETED and cleared by any other status.
func NextProcessState(p models.Process, status models.ProcessStatus, now time.Time) models.Process {
	p.Status = status
	if status == models.ProcessInProgress && p.StartedAt == nil {
		started := now
		p.StartedAt = &started
	}
	if status == models.ProcessCompleted {
		completed := now
		p.CompletedAt = &completed
	} else {
		p.CompletedAt = nil
	}
	return p
}
