// Package ws is the presentation transport: browser clients attach over a
// websocket, send intent messages and receive rendering instructions. One
// goroutine serves a connection, so all session mutation is sequential and
// the feedback pause is a plain sleep between the answer and the advance.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-page-quiz/internal/domain/entities"
	"github.com/aliskhannn/quran-page-quiz/internal/service"
)

const (
	msgConnectionFailed = "تعذر الاتصال بالخادم. حاول مرة أخرى."
	msgPlayerRequired   = "الرجاء إدخال اسمك أولاً."
	msgPageNotAllowed   = "الرجاء إدخال رقم صفحة مسموح به فقط."
	msgPageLoadFailed   = "لا يمكن الوصول إلى خادم القرآن. تحقق من اتصالك بالإنترنت."
	msgQuizBroken       = "خطأ فادح: لا توجد أي أسئلة مفعّلة! يرجى مراجعة لوحة التحكم."
)

type Handler struct {
	upgrader      websocket.Upgrader
	logger        *zap.Logger
	playerService PlayerService
	verseSource   VerseSource
	quizService   QuizService
	feedbackDelay time.Duration
}

func NewHandler(
	logger *zap.Logger,
	playerService PlayerService,
	verseSource VerseSource,
	quizService QuizService,
	feedbackDelay time.Duration,
) *Handler {
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:        logger,
		playerService: playerService,
		verseSource:   verseSource,
		quizService:   quizService,
		feedbackDelay: feedbackDelay,
	}
}

// connection holds everything one attached client owns: the loaded player
// record and the session in play.
type connection struct {
	conn           *websocket.Conn
	player         *entities.Player
	session        *entities.QuizSession
	settled        bool
	lastSettlement *service.Settlement
}

// ServeWS upgrades the request and runs the connection loop until the client
// disconnects.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &connection{conn: conn}
	h.send(c, outboundMessage{Type: "screen", Payload: screenPayload{Name: ScreenStart}})
	h.send(c, outboundMessage{Type: "rules", Payload: h.quizService.Rules()})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		h.handleIntent(r.Context(), c, inbound)
	}
}

func (h *Handler) handleIntent(ctx context.Context, c *connection, inbound inboundMessage) {
	switch inbound.Type {
	case intentLoadPlayer:
		h.handleLoadPlayer(ctx, c, inbound)
	case intentStart:
		h.handleStart(ctx, c, inbound)
	case intentAnswer:
		h.handleAnswer(ctx, c, inbound)
	case intentShowResult:
		h.handleShowResult(c)
	default:
		h.logger.Debug("unknown intent", zap.String("type", inbound.Type))
	}
}

func (h *Handler) handleLoadPlayer(ctx context.Context, c *connection, inbound inboundMessage) {
	var payload loadPlayerPayload
	if err := unmarshalPayload(inbound, &payload); err != nil || payload.Name == "" {
		h.sendError(c, msgPlayerRequired)
		return
	}

	h.send(c, outboundMessage{Type: "loader", Payload: map[string]bool{"visible": true}})
	player, err := h.playerService.Load(ctx, payload.Name)
	h.send(c, outboundMessage{Type: "loader", Payload: map[string]bool{"visible": false}})
	if err != nil {
		h.logger.Warn("player load failed", zap.String("name", payload.Name), zap.Error(err))
		h.sendError(c, msgConnectionFailed)
		return
	}

	c.player = player
	h.send(c, outboundMessage{Type: "player", Payload: h.playerView(player)})
}

func (h *Handler) handleStart(ctx context.Context, c *connection, inbound inboundMessage) {
	if c.player == nil {
		h.sendError(c, msgPlayerRequired)
		return
	}

	var payload startPayload
	if err := unmarshalPayload(inbound, &payload); err != nil {
		h.sendError(c, msgPageNotAllowed)
		return
	}
	if !h.quizService.Rules().PageAllowed(payload.Page) {
		h.sendError(c, msgPageNotAllowed)
		return
	}

	h.send(c, outboundMessage{Type: "loader", Payload: map[string]bool{"visible": true}})
	verses, err := h.verseSource.FetchPage(ctx, payload.Page)
	h.send(c, outboundMessage{Type: "loader", Payload: map[string]bool{"visible": false}})
	if err != nil {
		h.logger.Warn("page load failed", zap.Int("page", payload.Page), zap.Error(err))
		h.sendError(c, msgPageLoadFailed)
		return
	}

	c.session = h.quizService.StartSession(c.player, verses, payload.Page, payload.Qari)
	c.settled = false
	h.send(c, outboundMessage{Type: "screen", Payload: screenPayload{Name: ScreenQuiz}})
	h.advance(ctx, c)
}

func (h *Handler) handleAnswer(ctx context.Context, c *connection, inbound inboundMessage) {
	if c.session == nil {
		return
	}

	var payload answerPayload
	if err := unmarshalPayload(inbound, &payload); err != nil {
		return
	}

	feedback, err := h.quizService.SubmitAnswer(c.session, payload.QuestionID, payload.OptionID)
	if err != nil {
		// Late or duplicate answers arrive while feedback is on display;
		// they carry no intent worth surfacing.
		h.logger.Debug("answer rejected", zap.Error(err))
		return
	}

	h.send(c, outboundMessage{Type: "feedback", Payload: feedback})

	// Feedback display pause, then the automatic advance: no further user
	// input moves the session forward.
	time.Sleep(h.feedbackDelay)
	h.advance(ctx, c)
}

// advance asks for the next question or, once the slots are used up, settles
// the session and plays out the error-review / result sequence.
func (h *Handler) advance(ctx context.Context, c *connection) {
	question, finished, err := h.quizService.NextQuestion(c.session)
	if err != nil {
		h.logger.Error("advance failed", zap.String("session_id", c.session.ID), zap.Error(err))
		h.sendError(c, msgQuizBroken)
		return
	}

	if !finished {
		h.send(c, outboundMessage{Type: "progress", Payload: progressPayload{
			Current: c.session.CurrentQuestionIndex,
			Total:   c.session.TotalQuestions,
		}})
		h.send(c, outboundMessage{Type: "question", Payload: questionPayload{
			Current:  c.session.CurrentQuestionIndex,
			Total:    c.session.TotalQuestions,
			Question: viewOf(question),
		}})
		return
	}

	h.finish(ctx, c)
}

func (h *Handler) finish(ctx context.Context, c *connection) {
	h.send(c, outboundMessage{Type: "progress", Payload: progressPayload{
		Current:  c.session.TotalQuestions,
		Total:    c.session.TotalQuestions,
		Finished: true,
	}})

	settlement, err := h.quizService.Settle(ctx, c.session, c.player)
	if err != nil {
		h.logger.Error("settlement failed", zap.String("session_id", c.session.ID), zap.Error(err))
		h.sendError(c, msgConnectionFailed)
		return
	}
	c.settled = true
	c.lastSettlement = settlement

	// Mistakes go to the review screen first; the client asks for the final
	// result when the player is done reading.
	if len(c.session.ErrorLog) > 0 {
		h.send(c, outboundMessage{Type: "screen", Payload: screenPayload{Name: ScreenErrorReview}})
		h.send(c, outboundMessage{Type: "errorReview", Payload: errorReviewPayload{Errors: c.session.ErrorLog}})
		return
	}

	h.sendResult(c)
}

func (h *Handler) handleShowResult(c *connection) {
	if c.session == nil || !c.settled {
		return
	}
	h.sendResult(c)
}

func (h *Handler) sendResult(c *connection) {
	settlement := c.lastSettlement
	h.send(c, outboundMessage{Type: "screen", Payload: screenPayload{Name: ScreenResult}})
	h.send(c, outboundMessage{Type: "result", Payload: resultPayload{
		Name:       c.session.PlayerName,
		Score:      c.session.Score,
		Total:      c.session.TotalQuestions,
		XPEarned:   settlement.XPEarned,
		LevelUp:    settlement.LevelUp,
		Saved:      settlement.Saved,
		PlayerInfo: h.playerView(c.player),
	}})
}

func (h *Handler) playerView(player *entities.Player) playerPayload {
	return playerPayload{
		Name:     player.Name,
		XP:       player.XP,
		Diamonds: player.Diamonds,
		IsNew:    player.IsNew,
		Level:    service.ComputeLevelInfo(h.quizService.Progression().Levels, player.XP),
	}
}

func (h *Handler) send(c *connection, msg outboundMessage) {
	if err := c.conn.WriteJSON(msg); err != nil {
		h.logger.Debug("ws write failed", zap.Error(err))
	}
}

func (h *Handler) sendError(c *connection, message string) {
	h.send(c, outboundMessage{Type: "error", Payload: errorPayload{Message: message}})
}

func unmarshalPayload(inbound inboundMessage, out any) error {
	return json.Unmarshal(inbound.Payload, out)
}
