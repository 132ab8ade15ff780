package compositor

import (
	"fmt"
	"log/slog"

	"hex/internal/config"
	"hex/internal/vt100"
	"hex/ui/views"
)

// LayoutError reports a layout node that cannot be built.
type LayoutError struct {
	Kind string
	Path string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout error: unknown kind %q at %s", e.Kind, e.Path)
}

// index maps a task id to every leaf showing it.
type index map[string][]views.View

type builder struct {
	index     index
	formatter vt100.Formatter
	logger    *slog.Logger
}

func constraint(n *int) views.DimConstraint {
	if n == nil {
		return views.WrapContent
	}
	return views.Fixed(*n)
}

// build turns a layout description into a view tree, depth first.
func (b *builder) build(l config.Layout, path string) (views.View, error) {
	b.logger.Info("building view", "kind", l.Kind, "task", l.TaskID, "path", path)

	opts := []views.Option{views.WithID(l.LayoutID), views.WithFormatter(b.formatter)}
	if !l.IsVisible() {
		opts = append(opts, views.Hidden())
	}
	width, height := constraint(l.Width), constraint(l.Height)

	switch l.Kind {
	case config.KindLinearLayout:
		ll := views.NewLinearLayout(views.ParseOrientation(l.Orientation), width, height, opts...)
		for i, child := range l.Children {
			v, err := b.build(child, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			ll.AddChild(v)
		}
		return ll, nil

	case config.KindTextView:
		taskID := l.TaskID
		if taskID == "" {
			taskID = "unknown"
		}
		var v views.View
		if l.Main {
			v = views.NewInteractiveWidget(width, height, opts...)
		} else {
			v = views.NewWidget(width, height, opts...)
		}
		b.index[taskID] = append(b.index[taskID], v)
		return v, nil

	default:
		return nil, &LayoutError{Kind: l.Kind, Path: path}
	}
}
