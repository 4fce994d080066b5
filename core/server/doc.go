// Package server wraps http.Server with graceful shutdown and an
// errgroup-compatible Run.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	return g.Wait()
//
// Shutdown waits for in-flight HTTP requests only; hijacked connections
// such as WebSocket relays are ended through their own context.
package server
