package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhijeetsaherawat13/yesno-cricket-sub000/internal/ledger"
)

// apiResponse is the envelope every endpoint answers with. Code is a stable
// machine-readable string on failures; clients branch on it, not on the
// message text.
type apiResponse struct {
	OK    bool   `json:"ok"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func Ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, apiResponse{OK: true, Data: data})
}

func Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, apiResponse{OK: false, Code: code, Error: message})
}

// FailErr maps engine errors onto the envelope. Ledger rejections keep
// their code; store failures after rollback are retryable.
func FailErr(c *gin.Context, err error) {
	var rej *ledger.RejectionError
	if errors.As(err, &rej) {
		Fail(c, rejectionStatus(rej.Code), rej.Code, rej.Msg)
		return
	}
	var perr *ledger.PersistenceError
	if errors.As(err, &perr) {
		Fail(c, http.StatusServiceUnavailable, "store_unavailable", "durable store rejected the write, retry shortly")
		return
	}
	Fail(c, http.StatusInternalServerError, "internal", err.Error())
}

func rejectionStatus(code string) int {
	switch code {
	case "match_not_found", "market_not_found", "option_not_found", "position_not_found":
		return http.StatusNotFound
	case "position_not_owned":
		return http.StatusForbidden
	case "invalid_side", "invalid_match_id", "invalid_market_id",
		"invalid_option", "invalid_amount", "invalid_user":
		return http.StatusBadRequest
	default:
		// Business-rule rejections: settled match, suspensions, caps,
		// balance, stake size, close-state conflicts.
		return http.StatusConflict
	}
}
