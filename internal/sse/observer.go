package sse

import (
	"github.com/vitrinelab/vitrine/internal/analysis"
	"github.com/vitrinelab/vitrine/internal/domain"
)

// DraftObserver forwards one draft's analysis lifecycle to the manager.
type DraftObserver struct {
	manager *Manager
	draftID string
}

var _ analysis.Observer = (*DraftObserver)(nil)

// ForDraft returns an analysis observer that emits events for draftID.
func (m *Manager) ForDraft(draftID string) *DraftObserver {
	return &DraftObserver{manager: m, draftID: draftID}
}

// AnalysisStarted implements analysis.Observer.
func (o *DraftObserver) AnalysisStarted(op domain.AnalysisMode, images int) {
	o.manager.Emit(NewAnalysisStartedEvent(o.draftID, op, images))
}

// AnalysisSucceeded implements analysis.Observer.
func (o *DraftObserver) AnalysisSucceeded(result *analysis.Result) {
	o.manager.Emit(NewAnalysisCompletedEvent(o.draftID, result, result.Method))
}

// AnalysisFailed implements analysis.Observer.
func (o *DraftObserver) AnalysisFailed(op domain.AnalysisMode, err *analysis.RemoteError) {
	o.manager.Emit(NewAnalysisFailedEvent(o.draftID, op, err.Message))
}
