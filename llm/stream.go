package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sapientpants/quorum-sub001/types"
)

// streamReadSize is the size of each body read while streaming.
const streamReadSize = 4096

// StreamMessage streams the answer as a sequence of events on the returned
// channel: zero or more tokens, then exactly one event with Done set, after
// which the channel is closed. Precondition failures and transport errors are
// reported as the terminal event, never as a panic or a missing event.
//
// The channel holds at most one pending event. A caller that stops reading
// must cancel ctx: the producer then stops emitting tokens, drops an unread
// token and parks the Done event in the buffer, so it never blocks.
func (c *Client) StreamMessage(
	ctx context.Context,
	messages []types.Message,
	apiKey, model string,
	settings *types.LLMSettings,
) <-chan types.StreamingResponse {
	out := make(chan types.StreamingResponse, 1)

	go func() {
		defer close(out)

		start := time.Now()
		spanCtx, span := c.begin(ctx, "stream", model, true)

		tokens := 0
		err := c.stream(spanCtx, messages, apiKey, model, settings, func(token string) bool {
			if !emitToken(spanCtx, out, token) {
				return false
			}
			tokens++
			return true
		})

		c.end(spanCtx, span, "stream", model, true, start, tokens, err)
		sendDone(spanCtx, out, types.StreamingResponse{Done: true, Err: err})
	}()

	return out
}

// emitToken delivers one token unless ctx is cancelled. Cancellation is
// checked before and after the send, so a token that lost the race with
// cancellation is taken back.
func emitToken(ctx context.Context, out chan types.StreamingResponse, token string) bool {
	select {
	case <-ctx.Done():
		return false
	default:
	}
	select {
	case <-ctx.Done():
		return false
	case out <- types.StreamingResponse{Token: token}:
	}
	if ctx.Err() != nil {
		reclaim(out)
		return false
	}
	return true
}

// sendDone delivers the terminal event. Once ctx is cancelled it never
// blocks: an unread token is dropped and the event waits in the buffer.
func sendDone(ctx context.Context, out chan types.StreamingResponse, done types.StreamingResponse) {
	select {
	case out <- done:
	case <-ctx.Done():
		reclaim(out)
		// The producer is the only sender and the buffer is now empty.
		out <- done
	}
}

// reclaim drops a pending unread token, if any.
func reclaim(out chan types.StreamingResponse) {
	select {
	case <-out:
	default:
	}
}

// sendStreaming drives StreamMessage for SendMessage callers with callbacks.
func (c *Client) sendStreaming(
	ctx context.Context,
	messages []types.Message,
	apiKey, model string,
	settings *types.LLMSettings,
	callbacks *types.StreamingCallbacks,
) (string, error) {
	var (
		sb        strings.Builder
		streamErr *types.Error
	)
	for ev := range c.StreamMessage(ctx, messages, apiKey, model, settings) {
		if ev.Done {
			streamErr = ev.Err
			continue
		}
		sb.WriteString(ev.Token)
		if callbacks.OnToken != nil {
			callbacks.OnToken(ev.Token)
		}
	}

	if streamErr != nil {
		if callbacks.OnError != nil {
			callbacks.OnError(streamErr)
		}
		return "", streamErr
	}
	full := sb.String()
	if callbacks.OnComplete != nil {
		callbacks.OnComplete(full)
	}
	return full, nil
}

// stream runs one streamed exchange, handing every token to emit. emit
// returns false when the consumer has gone away.
func (c *Client) stream(
	parent context.Context,
	messages []types.Message,
	apiKey, model string,
	settings *types.LLMSettings,
	emit func(string) bool,
) *types.Error {
	if !c.adapter.Descriptor().Capabilities.SupportsStreaming || c.adapter.StreamFormat().DataPrefix == "" {
		return types.NewError(types.ErrUnsupportedOperation, "streaming is not supported",
			types.WithProvider(c.adapter.Name()))
	}
	if err := c.validate(apiKey, model); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	resp, err := c.do(ctx, messages, apiKey, model, settings, true)
	if err != nil {
		return c.exchangeError(parent, ctx, err, "")
	}
	defer resp.Body.Close()

	requestID := RequestIDFrom(resp.Header)
	decoder := NewLineDecoder(c.adapter.StreamFormat())
	buf := make([]byte, streamReadSize)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if err := c.dispatch(parent, decoder.Feed(buf[:n]), emit, requestID); err != nil {
				return err
			}
			if decoder.Done() {
				return nil
			}
		}
		if errors.Is(readErr, io.EOF) {
			return c.dispatch(parent, decoder.Flush(), emit, requestID)
		}
		if readErr != nil {
			return c.exchangeError(parent, ctx, fmt.Errorf("read stream: %w", readErr), requestID)
		}
	}
}

// dispatch extracts tokens from decoded payloads. Malformed payloads are
// skipped; an adapter error ends the stream.
func (c *Client) dispatch(parent context.Context, payloads []string, emit func(string) bool, requestID string) *types.Error {
	for _, payload := range payloads {
		if !json.Valid([]byte(payload)) {
			c.logger.Warn("skipping malformed stream line",
				zap.String("request_id", requestID),
				zap.Int("length", len(payload)))
			continue
		}
		token, ok, err := c.adapter.ExtractToken([]byte(payload))
		if err != nil {
			return c.normalize(err, requestID)
		}
		if !ok {
			continue
		}
		if !emit(token) {
			return c.normalize(cancelCause(parent), requestID)
		}
	}
	return nil
}

// exchangeError normalizes a failure of the HTTP exchange. A failure caused
// by the caller's context is reported as that context's error; when only the
// engine's own context was cancelled the exchange simply ended.
func (c *Client) exchangeError(parent, own context.Context, err error, requestID string) *types.Error {
	if e, ok := types.AsError(err); ok {
		return e
	}
	if parent.Err() == nil && own.Err() != nil {
		return nil
	}
	if parent.Err() != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("%w: %v", parent.Err(), err)
	}
	return c.normalize(err, requestID)
}

func cancelCause(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}
