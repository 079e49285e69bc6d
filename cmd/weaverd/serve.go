package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/streamweaver/weaver/executor"
	"github.com/streamweaver/weaver/executor/remote"
	"github.com/streamweaver/weaver/internal/logging"
	"github.com/streamweaver/weaver/reactor"
	"github.com/streamweaver/weaver/registry"
	"github.com/streamweaver/weaver/renderer"
	"github.com/streamweaver/weaver/signal"
	"github.com/streamweaver/weaver/sink/htmldom"
	"github.com/streamweaver/weaver/workerpool"
)

func serveCmd() *cobra.Command {
	var (
		listenAddr string
		workers    int
		logLevel   string
		logFormat  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Stream Weaver host",
		Long:  "Serve the streaming SSR page, the remote logic-execution endpoint, and websocket-driven reactor sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			logging.InitStructured(logFormat, logLevel)

			loader := executor.NewMapLoader()
			registerCounterLogic(loader)

			ex := executor.New(signal.RoleServer, loader)
			pool := workerpool.New(workers, loader)
			ex.Workers = pool

			mux := http.NewServeMux()
			mux.HandleFunc("/", handleIndex(ex))
			mux.HandleFunc("/weaver/client.js", handleScript(reactor.BootstrapScript))
			mux.HandleFunc("/weaver/worker.js", handleScript(workerpool.WorkerScript))
			mux.Handle("/weaver/execute", remote.NewHandler(ex))
			mux.HandleFunc("/weaver/live", handleLive(ex))
			mux.Handle("/metrics", promhttp.Handler())

			httpServer := &http.Server{Addr: listenAddr, Handler: mux}

			errCh := make(chan error, 1)
			go func() {
				logging.Op().Info("weaverd started", "addr", listenAddr, "workers", workers)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case sig := <-sigCh:
				logging.Op().Info("shutdown signal received", "signal", sig.String())
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(ctx); err != nil {
					return fmt.Errorf("shutdown weaverd: %w", err)
				}
				return nil
			case err := <-errCh:
				return fmt.Errorf("weaverd server error: %w", err)
			}
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", ":8080", "HTTP listen address")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool capacity (0 = auto, spec.md §4.7 sizing rule)")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	return cmd
}

const htmlHead = `<!doctype html>
<html>
<head><meta charset="utf-8"><title>Stream Weaver</title></head>
<body>
<div id="app">`

const htmlFoot = `</div>
<script src="/weaver/client.js"></script>
<script>window.weaver.connect((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/weaver/live");</script>
</body>
</html>`

// handleIndex serves the streaming SSR page (spec.md §4.3): the document
// shell is written immediately, then the renderer's chunk channel is
// flushed to the response as each chunk becomes available.
func handleIndex(ex *executor.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := registry.New()
		root := buildCounterApp(reg)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, htmlHead)

		flusher, canFlush := w.(http.Flusher)

		rend := renderer.New(reg, ex)
		for chunk := range rend.Render(r.Context(), root) {
			w.Write(chunk)
			if canFlush {
				flusher.Flush()
			}
		}

		fmt.Fprint(w, htmlFoot)
	}
}

func handleScript(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		fmt.Fprint(w, body)
	}
}

var liveUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleLive hosts one reactor session per websocket connection (spec.md
// §4.4 expansion, "server-hosted client session"): a fresh Registry and
// component tree are built, a Delegate drives the command/update loop, and
// a SuspenseTransform/SinkTransform Pipeline keeps a server-side shadow DOM
// in sync so suspense boundary state is tracked correctly even when the
// real DOM lives in the connected client. Every Update is additionally
// forwarded verbatim over the wire for that client to apply.
func handleLive(ex *executor.Executor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := liveUpgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Op().Error("live: upgrade failed", "error", err)
			return
		}

		ctx := r.Context()
		reg := registry.New()
		root := buildCounterApp(reg)

		rend := renderer.New(reg, ex)
		var html []byte
		for chunk := range rend.Render(ctx, root) {
			html = append(html, chunk...)
		}

		dom, err := htmldom.Parse(htmlHead + string(html) + htmlFoot)
		if err != nil {
			logging.Op().Error("live: initial parse failed", "error", err)
			conn.Close()
			return
		}

		delegate := reactor.New(reg, ex)
		pipeline := &reactor.Pipeline{
			Suspense: reactor.NewSuspenseTransform(reg, ex, dom),
			Sink:     reactor.NewSinkTransform(reg, ex, dom),
		}

		wire := reactor.NewWebsocketWire(conn, 32)
		delegate.Subscribe(func(u reactor.Update) {
			pipeline.Handle(ctx, u)
			select {
			case wire.Wire.Updates <- u:
			case <-ctx.Done():
			}
		})

		go delegate.Run(ctx, wire.Wire.Commands)

		if err := wire.Pump(ctx); err != nil {
			logging.Op().Info("live: session ended", "error", err)
		}
	}
}
