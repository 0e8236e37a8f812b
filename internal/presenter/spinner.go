package presenter

import (
	"io"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

const spinnerRefresh = 50 * time.Millisecond

type spinner struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func startSpinner(w io.Writer, label string) *spinner {
	p := mpb.New(
		mpb.WithOutput(w),
		mpb.WithWidth(1),
		mpb.WithRefreshRate(spinnerRefresh),
	)
	bar := p.New(0,
		mpb.SpinnerStyle().PositionLeft(),
		mpb.AppendDecorators(decor.Name(" "+label)),
		mpb.BarRemoveOnComplete(),
	)
	return &spinner{p: p, bar: bar}
}

// stop removes the spinner line and waits for the renderer to exit.
func (s *spinner) stop() {
	s.bar.Abort(true)
	s.p.Wait()
}
