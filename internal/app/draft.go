package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fpt/notice-cli/pkg/agent/events"
	"github.com/fpt/notice-cli/pkg/agent/executor"
)

// DraftOptions controls how a front end presents one drafting request.
type DraftOptions struct {
	// Spinner shows the busy indicator on stderr.
	Spinner bool
	// Trace writes agent events to TraceWriter.
	Trace       bool
	TraceWriter io.Writer
}

// RunDraft drafts a notice in session, showing progress as configured.
func RunDraft(ctx context.Context, session *Session, grievance string, opts DraftOptions) (string, error) {
	var runOpts []executor.RunOption
	if opts.Trace {
		w := opts.TraceWriter
		if w == nil {
			w = os.Stderr
		}
		runOpts = append(runOpts, executor.WithEventHandler(TraceHandler(w)))
	}

	var sp *Spinner
	if opts.Spinner {
		sp = StartSpinner(os.Stderr, BusyLabel)
	}
	notice, err := session.DraftNotice(ctx, grievance, runOpts...)
	sp.Stop()
	return notice, err
}

// TraceHandler prints a one-line summary of each agent event.
func TraceHandler(w io.Writer) events.EventHandler {
	return func(ev events.AgentEvent) {
		step := ""
		if ev.Step != nil {
			step = fmt.Sprintf("[%d/%d] ", ev.Step.Used, ev.Step.Maximum)
		}
		switch d := ev.Data.(type) {
		case events.StateChangeData:
			fmt.Fprintf(w, "%s🔄 %s → %s\n", step, d.From, d.To)
		case events.ToolCallStartData:
			fmt.Fprintf(w, "%s🔍 %s %v\n", step, d.ToolName, d.Arguments)
		case events.ToolResultData:
			status := "ok"
			if d.IsError {
				status = "failed"
			}
			fmt.Fprintf(w, "%s📄 %s %s (%s)\n", step, d.ToolName, status, d.Duration.Round(time.Millisecond))
		case events.RecoveryData:
			fmt.Fprintf(w, "%s🩹 recovering: %s\n", step, d.Reason)
		case events.ResponseData:
			if d.Forced {
				fmt.Fprintf(w, "%s✍️ forced final answer\n", step)
			}
		case events.ErrorData:
			fmt.Fprintf(w, "%s❌ %v\n", step, d.Error)
		}
	}
}
