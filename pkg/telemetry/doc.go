// Package telemetry provides the observability plumbing of one xrtkcfg
// invocation.
//
// It bundles structured logging (zerolog), tracing (OpenTelemetry, exported
// locally with the stdout exporter), Prometheus metrics and a small
// synchronous event publisher.
//
// # Usage
//
//	cfg := telemetry.DefaultConfig()
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	ctx = tel.WithContext(ctx)
//
// # Metrics
//
// xrtkcfg runs one command and exits, so metrics are never served. When
// metrics.textfile is set, Shutdown writes the private registry to that file
// for the node-exporter textfile collector:
//
//	metrics:
//	  enabled: true
//	  textfile: /var/lib/node_exporter/xrtkcfg.prom
//
// # Tracing
//
// Spans are written to stderr when tracing.enabled is set. Nothing is sent
// over the network.
//
//	op := telemetry.StartOperation(ctx, "resolver.set_attribute",
//	    telemetry.AttrAttribute.String("turbo"))
//	defer func() { op.End(err) }()
//
// # Events
//
// The resolver publishes attribute.changed, profile.imported and
// value.corrupt events. Every Telemetry instance logs them through the
// "events" component logger; further subscribers may be attached:
//
//	tel.Events.Subscribe(func(e telemetry.Event) {
//	    fmt.Println(e.Type, e.Attribute)
//	}, telemetry.FilterByType(telemetry.EventTypeAttributeChanged))
package telemetry
