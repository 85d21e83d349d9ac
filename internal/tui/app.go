package tui

import (
	"context"

	"github.com/thruflo/recpanel/internal/backend"
	"github.com/thruflo/recpanel/internal/logging"
	"github.com/thruflo/recpanel/internal/panel"
)

// App drives the terminal panel: it renders store changes, forwards operator
// actions to the controller and shows command outcomes as alerts.
type App struct {
	ui       *TUI
	store    *panel.Store
	loop     *panel.SyncLoop
	ctrl     *panel.Controller
	notifier *Notifier
	logger   *logging.Logger

	// lastReport is the report text last seen, used to notice a new report.
	lastReport string
	primed     bool
}

// NewApp creates an App.
func NewApp(ui *TUI, store *panel.Store, loop *panel.SyncLoop, ctrl *panel.Controller, notifier *Notifier, logger *logging.Logger) *App {
	if logger == nil {
		logger = logging.Default()
	}
	return &App{
		ui:       ui,
		store:    store,
		loop:     loop,
		ctrl:     ctrl,
		notifier: notifier,
		logger:   logger.With("component", "tui"),
	}
}

// Run shows the panel until the operator quits or ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes, unsubscribe := a.store.Subscribe()
	defer unsubscribe()

	handle := a.loop.Start(ctx)
	defer handle.Stop()

	a.refresh()

	// Refresh right away rather than waiting a full interval.
	go a.loop.PollOnce(ctx)

	uiErr := make(chan error, 1)
	go func() {
		uiErr <- a.ui.Run(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-uiErr:
			return err

		case <-changes:
			a.refresh()

		case ev := <-a.ui.Actions():
			if ev.Action == ActionQuit {
				continue
			}
			go func(ev ActionEvent) {
				a.dispatch(ctx, ev)
				a.ui.Update()
			}(ev)
		}
	}
}

// refresh pushes the latest snapshot to the UI.
func (a *App) refresh() {
	snap := a.store.Snapshot()
	a.ui.SetSnapshot(snap)

	if a.reportArrived(snap) {
		if err := a.notifier.NotifyForReason(NotifyReasonReportReady, snap.Status.MessageText(), true); err != nil {
			a.logger.Debug("notification failed", "error", err)
		}
	}

	a.ui.Update()
}

// reportArrived reports whether snap carries a report that was not there at
// the previous successful poll. The report present at startup does not count.
func (a *App) reportArrived(snap panel.Snapshot) bool {
	if snap.Seq == 0 || !snap.Status.Known(backend.FieldLastTranscript) {
		return false
	}

	text := snap.Status.ReportText()
	arrived := a.primed && text != "" && text != a.lastReport
	a.lastReport = text
	a.primed = true
	return arrived
}

// dispatch runs the command behind an operator action.
func (a *App) dispatch(ctx context.Context, ev ActionEvent) {
	switch ev.Action {
	case ActionStart:
		if err := a.ctrl.StartRecording(ctx, ev.Input); err != nil {
			a.ui.ShowAlert(panel.OperatorMessage(err))
		}

	case ActionStop:
		if err := a.ctrl.StopRecording(ctx); err != nil {
			a.ui.ShowAlert(panel.OperatorMessage(err))
		}

	case ActionUpload:
		msg, err := a.ctrl.UploadLast(ctx)
		if err != nil {
			a.ui.ShowAlert(panel.OperatorMessage(err))
			return
		}
		a.ui.ShowAlert(msg)

	case ActionRefresh:
		// Failures are already logged by the loop.
		a.loop.PollOnce(ctx)
	}
}
