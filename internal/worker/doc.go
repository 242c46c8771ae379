// Package worker runs the classification router as a Redis Streams consumer.
//
// Work messages carry a JSON "data" field:
//
//	{"request_id": "...", "request": "Book me a flight to London"}
//
// Each message is routed and a decision is published to the result stream.
// Parse and routing failures go to "<result stream>.errors". Every message is
// acknowledged once handled, whether it succeeded or not. Stop ends the read
// loop but lets the in-flight message finish.
//
// Example usage:
//
//	reg := prometheus.NewRegistry()
//	w := worker.NewWorker(cfg, redisClient, r, worker.NewMetrics(reg), logger)
//	if err := w.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	defer w.Stop(5 * time.Second)
//
//	healthServer := worker.NewHealthServer(cfg.HealthPort, reg, logger,
//	    worker.RedisCheck(redisClient), worker.WorkerCheck(w))
//	healthServer.Start()
//	defer healthServer.Stop()
package worker
