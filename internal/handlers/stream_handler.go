package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/tracker"

	"github.com/labstack/echo/v4"
)

// StreamHandler exposes the store's live snapshots over Server-Sent Events.
// Each mutation to the owner's transactions produces one "snapshot" event
// carrying the full ordered listing.
type StreamHandler struct {
	store  tracker.SnapshotStore
	logger *slog.Logger
}

// NewStreamHandler creates a new snapshot stream handler
func NewStreamHandler(snapshots tracker.SnapshotStore, logger *slog.Logger) *StreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamHandler{
		store:  snapshots,
		logger: logger,
	}
}

// StreamTransactions opens an SSE stream of the signed-in user's snapshots.
// The first event is the current state; subsequent events follow every
// mutation. The subscription is cancelled when the client disconnects.
// @Summary Live transaction stream
// @Description Server-Sent Events stream of transaction snapshots for the signed-in user
// @Tags Transactions
// @Security BearerAuth
// @Produce text/event-stream
// @Success 200 {string} string "snapshot events"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 422 {object} errors.ErrorResponse "TRANSACTION_002 - Subscription could not be opened"
// @Router /transactions/stream [get]
func (h *StreamHandler) StreamTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	sub, err := h.store.Subscribe(userID)
	if err != nil {
		return SendError(c, errors.TransactionPersistenceError)
	}
	defer sub.Cancel()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot, ok := <-sub.Snapshots():
			if !ok {
				return nil
			}
			if err := writeSnapshotEvent(res, snapshot); err != nil {
				h.logger.Warn("snapshot stream closed", "error", err, "owner_id", userID)
				return nil
			}
		}
	}
}

func writeSnapshotEvent(res *echo.Response, snapshot []models.Transaction) error {
	payload, err := json.Marshal(toTransactionResponses(snapshot))
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(res, "event: snapshot\ndata: %s\n\n", payload); err != nil {
		return err
	}
	res.Flush()
	return nil
}
