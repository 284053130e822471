package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/connectly/support-api/internal/api/metrics"
	"github.com/connectly/support-api/internal/core/ports"
)

// ChatHandler serves the chat list and the messages of a chat.
type ChatHandler struct {
	service ports.ChatService
}

func NewChatHandler(service ports.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

// ListChats returns the latest message of every chat.
//
// @Summary      List chats
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.ChatSummary
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /chats [get]
func (h *ChatHandler) ListChats(c echo.Context) error {
	chats, err := h.service.ListChats(c.Request().Context())
	if err != nil {
		return HTTPError(err, MsgChatsFailed)
	}
	return c.JSON(http.StatusOK, chats)
}

// ListMessages returns a chat's messages, oldest first.
//
// @Summary      List messages of a chat
// @Tags         chats
// @Produce      json
// @Security     BearerAuth
// @Param        chatId  path      string  true  "Chat id"
// @Success      200     {array}   domain.Message
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /chats/{chatId}/messages [get]
func (h *ChatHandler) ListMessages(c echo.Context) error {
	msgs, err := h.service.ListMessages(c.Request().Context(), c.Param("chatId"))
	if err != nil {
		return HTTPError(err, MsgMessagesFailed)
	}
	return c.JSON(http.StatusOK, msgs)
}

// SendMessage appends a message to a chat.
//
// @Summary      Send a message
// @Tags         chats
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        chatId  path      string              true  "Chat id"
// @Param        body    body      sendMessageRequest  true  "Message"
// @Success      201     {object}  domain.Message
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /chats/{chatId}/messages [post]
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, MsgInvalidBody)
	}

	msg, err := h.service.SendMessage(c.Request().Context(), ports.SendMessageInput{
		ChatID:       c.Param("chatId"),
		CustomerName: req.CustomerName,
		Message:      req.Message,
	})
	if err != nil {
		return HTTPError(err, MsgSendFailed)
	}

	metrics.MessagesSentTotal.Inc()
	return c.JSON(http.StatusCreated, msg)
}
