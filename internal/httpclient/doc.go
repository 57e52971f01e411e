// Package httpclient provides the HTTP plumbing for ratelimit-probe.
//
// # Request Building
//
// Use [NewRequestBuilder] to create a builder from configuration, then build
// one request per loop iteration with the loop's current header set:
//
//	builder, err := httpclient.NewRequestBuilder(cfg)
//	if err != nil {
//		return err
//	}
//	req, err := builder.Build(ctx, header)
//
// # HTTP Client
//
// [NewClient] creates the single client shared by the whole run, so the
// connection to the target is reused between iterations:
//
//	client := httpclient.NewClient(cfg.Timeout)
//	resp, err := client.Do(req)
package httpclient
