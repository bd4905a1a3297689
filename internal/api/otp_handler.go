package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/bwotp/internal/core"
)

const missingNameMessage = "Missing item name. Use /otp?name=XXX or set BW_ITEM_NAME"

// OTPHandler serves TOTP codes as plain text.
type OTPHandler struct {
	totp        core.TOTPProvider
	defaultItem string
	logger      *zap.Logger
}

// NewOTPHandler creates an OTPHandler. defaultItem is used when the request names no item.
func NewOTPHandler(totp core.TOTPProvider, defaultItem string, logger *zap.Logger) *OTPHandler {
	return &OTPHandler{
		totp:        totp,
		defaultItem: strings.TrimSpace(defaultItem),
		logger:      logger,
	}
}

// GetOTP handles GET /otp?name=<item>.
func (h *OTPHandler) GetOTP(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		name = h.defaultItem
	}
	if name == "" {
		writeError(c, http.StatusInternalServerError, missingNameMessage)
		return
	}

	code, err := h.totp.GetTOTP(c.Request.Context(), name)
	if err != nil {
		_ = c.Error(err)
		h.logger.Error("Failed to get TOTP", zap.String("item", name), zap.Error(err))
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.String(http.StatusOK, code+"\n")
}
