package services

import "github.com/diewo77/bizdesk/internal/models"

type transitions map[models.DocumentStatus][]models.DocumentStatus

var lifecycles = map[models.DocumentKind]transitions{
	models.KindInvoice: {
		models.StatusDraft:   {models.StatusSent, models.StatusCancelled},
		models.StatusSent:    {models.StatusPaid, models.StatusOverdue, models.StatusCancelled},
		models.StatusOverdue: {models.StatusPaid, models.StatusCancelled},
	},
	models.KindEstimate: {
		models.StatusDraft:    {models.StatusSent},
		models.StatusSent:     {models.StatusAccepted, models.StatusRejected},
		models.StatusAccepted: {models.StatusConverted},
	},
	models.KindWorkOrder: {
		models.StatusDraft:      {models.StatusScheduled, models.StatusCancelled},
		models.StatusScheduled:  {models.StatusInProgress, models.StatusCancelled},
		models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
	},
}

// CanTransition reports whether a document of kind may move from one
// status to another.
func CanTransition(kind models.DocumentKind, from, to models.DocumentStatus) bool {
	for _, next := range lifecycles[kind][from] {
		if next == to {
			return true
		}
	}
	return false
}

// convertOnly statuses are reached through Convert, which creates the
// invoice in the same transaction. A plain status change cannot set them.
var convertOnly = map[models.DocumentStatus]bool{models.StatusConverted: true}

// CanSetStatus is CanTransition restricted to the statuses SetStatus may
// write directly.
func CanSetStatus(kind models.DocumentKind, from, to models.DocumentStatus) bool {
	return !convertOnly[to] && CanTransition(kind, from, to)
}

// NextStatuses lists the statuses reachable from the current one.
func NextStatuses(kind models.DocumentKind, from models.DocumentStatus) []models.DocumentStatus {
	return append([]models.DocumentStatus(nil), lifecycles[kind][from]...)
}
