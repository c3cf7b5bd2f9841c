package ticket

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/antrian-kiosk/antrian/internal/application/ticket/usecases"
	"github.com/antrian-kiosk/antrian/internal/shared/config"
	"github.com/antrian-kiosk/antrian/internal/shared/errors"
	"github.com/antrian-kiosk/antrian/internal/shared/logger"
	"github.com/antrian-kiosk/antrian/internal/shared/utils"
)

const msgTicketNumberRequired = "Ticket number is required"

type TicketHandler struct {
	getLastTicketUC usecases.GetLastTicketExecutor
	submitTicketUC  usecases.SubmitTicketExecutor
	issueTicketUC   usecases.IssueTicketExecutor
	nextNumberUC    usecases.NextTicketNumberExecutor
	session         config.SessionConfig
	logger          logger.Interface
}

func NewTicketHandler(
	getLastTicketUC usecases.GetLastTicketExecutor,
	submitTicketUC usecases.SubmitTicketExecutor,
	issueTicketUC usecases.IssueTicketExecutor,
	nextNumberUC usecases.NextTicketNumberExecutor,
	session config.SessionConfig,
	log logger.Interface,
) *TicketHandler {
	return &TicketHandler{
		getLastTicketUC: getLastTicketUC,
		submitTicketUC:  submitTicketUC,
		issueTicketUC:   issueTicketUC,
		nextNumberUC:    nextNumberUC,
		session:         session,
		logger:          log,
	}
}

// GetLastTicket handles GET /get-last-ticket
func (h *TicketHandler) GetLastTicket(c *gin.Context) {
	result, err := h.getLastTicketUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// SubmitTicket handles POST /submit-ticket
func (h *TicketHandler) SubmitTicket(c *gin.Context) {
	var req SubmitTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for submit ticket", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError(msgTicketNumberRequired, err.Error()))
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warnw("submit ticket rejected", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError(msgTicketNumberRequired, errors.GetAppError(err).Details))
		return
	}

	result, err := h.submitTicketUC.Execute(c.Request.Context(), req.ToCommand())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SetTicketCookie(c, h.session, result.TicketNumber)
	utils.SuccessResponse(c, http.StatusOK, "Ticket submitted successfully", result)
}

// IssueTicket handles POST /issue-ticket
func (h *TicketHandler) IssueTicket(c *gin.Context) {
	result, err := h.issueTicketUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SetTicketCookie(c, h.session, result.TicketNumber)
	utils.SuccessResponse(c, http.StatusOK, "Ticket issued successfully", result)
}

// NextTicketNumber handles GET /next-ticket-number
func (h *TicketHandler) NextTicketNumber(c *gin.Context) {
	result, err := h.nextNumberUC.Execute(c.Request.Context())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetSession handles GET /session
func (h *TicketHandler) GetSession(c *gin.Context) {
	number, ok := utils.GetTicketCookie(c, h.session)
	utils.SuccessResponse(c, http.StatusOK, "", SessionResponse{Active: ok, TicketNumber: number})
}

// ClearSession handles DELETE /session
func (h *TicketHandler) ClearSession(c *gin.Context) {
	utils.ClearTicketCookie(c, h.session)
	utils.SuccessResponse(c, http.StatusOK, "Session cleared", SessionResponse{})
}
