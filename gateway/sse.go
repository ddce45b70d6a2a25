package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vantagehq/vantage/runtime"
	"github.com/vantagehq/vantage/types"
)

// serveStream tails the run's log to one SSE subscriber.
//
// The subscriber receives every log event with sequence >= from, in
// order, then exactly one terminal event (done xor error). Heartbeat
// comments keep idle connections alive through proxies. The caller
// holds the run pinned against eviction for the life of the stream.
func (g *Gateway) serveStream(c echo.Context, run *runtime.Run, from int64) error {
	res := c.Response()
	h := res.Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	g.collector.IncSubscriberAttached()

	ctx := c.Request().Context()
	for {
		waitCtx, cancel := context.WithTimeout(ctx, g.cfg.Heartbeat)
		batch, closed, err := run.Wait(waitCtx, from)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				// Client disconnected; the run itself is unaffected.
				return nil
			}
			if err := writeComment(res, "hb"); err != nil {
				return nil
			}
			continue
		}

		for _, ev := range batch {
			if err := writeEvent(res, types.StreamEventLog, ev.Sequence, ev); err != nil {
				return nil
			}
			from = ev.Sequence + 1
		}

		if closed && len(batch) == 0 {
			g.writeTerminal(res, run, from)
			g.collector.IncSubscriberCompleted()
			return nil
		}
	}
}

// writeTerminal emits the done or error event that ends the stream.
// The done payload is the serialized Report; the error payload carries
// the recorded failure message. Its id continues the log sequence so a
// reconnect after the terminal event replays nothing.
func (g *Gateway) writeTerminal(res *echo.Response, run *runtime.Run, id int64) {
	if runErr := run.Err(); runErr != nil {
		_ = writeEvent(res, types.StreamEventError, id, types.ErrorEvent{Message: runErr.Message})
		return
	}
	report, _ := run.Result()
	_ = writeEvent(res, types.StreamEventDone, id, report)
}

func writeEvent(res *echo.Response, typ types.StreamEventType, id int64, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\nid: %d\ndata: %s\n\n", typ, id, payload); err != nil {
		return err
	}
	res.Flush()
	return nil
}

func writeComment(res *echo.Response, text string) error {
	if _, err := fmt.Fprintf(res, ": %s\n\n", text); err != nil {
		return err
	}
	res.Flush()
	return nil
}
