package health

import "go.uber.org/fx"

// NewReadinessModule provides the tracker as ComponentManager and
// ReadinessWaiter. Registration is sealed by the first OnStart hook.
func NewReadinessModule() fx.Option {
	return fx.Options(
		fx.Provide(
			newTracker,
			func(t *tracker) ComponentManager { return t },
			func(t *tracker) ReadinessWaiter { return t },
		),
		fx.Invoke(func(lc fx.Lifecycle, t *tracker) {
			lc.Append(fx.StartHook(t.seal))
		}),
	)
}
