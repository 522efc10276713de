package daemon

import (
	"context"

	"github.com/brendandebeasi/dwlb/pkg/backend"
	"github.com/brendandebeasi/dwlb/pkg/bar"
	"github.com/brendandebeasi/dwlb/pkg/logx"
	"github.com/brendandebeasi/dwlb/pkg/markup"
	"pkt.systems/pslog"
)

// Handler applies control messages to the bars they target.
type Handler struct {
	Registry *bar.Registry
	Backend  backend.Backend
	Parser   *markup.Parser
}

// Apply runs msg against every bar its target resolves to and returns
// how many bars it touched. An unmatched target is not an error.
func (h *Handler) Apply(ctx context.Context, msg Message) int {
	targets := h.Registry.Resolve(msg.Target)
	if len(targets) == 0 {
		pslog.Ctx(ctx).Debug("control target matched no bar", "target", msg.Target, "cmd", msg.Command.String())
		return 0
	}
	var status markup.StatusText
	if msg.Command == CmdStatus {
		status = h.Parser.Parse(msg.Arg)
	}
	for _, b := range targets {
		switch msg.Command {
		case CmdStatus:
			b.SetStatus(status)
		case CmdTitle:
			b.SetCustomTitle(msg.Arg)
		case CmdShow:
			h.show(ctx, b, b.Show)
		case CmdHide:
			b.Hide()
		case CmdToggleVisibility:
			h.show(ctx, b, b.ToggleVisibility)
		case CmdSetTop:
			b.SetTop()
		case CmdSetBottom:
			b.SetBottom()
		case CmdToggleLocation:
			b.ToggleLocation()
		}
	}
	return len(targets)
}

func (h *Handler) show(ctx context.Context, b *bar.Bar, fn func(backend.Backend) error) {
	if err := fn(h.Backend); err != nil {
		logx.WithBar(pslog.Ctx(ctx), b).Error("surface creation failed", "err", err)
	}
}
