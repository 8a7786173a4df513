package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "inspect-sim/internal/application"
	"inspect-sim/internal/container"
	"inspect-sim/internal/domain/entity"
	"inspect-sim/internal/domain/port"
	"inspect-sim/internal/infrastructure/terminal"
	"inspect-sim/internal/infrastructure/vision"
)

const (
	msgStart = `🤖 Привет! Вы управляете дроном-инспектором.

Найдите дефекты на сцене и сфотографируйте их как можно ближе и под прямым углом.

📋 Команды:
/aim x y z dx dy dz — проверить прицел
/shoot x y z dx dy dz — сделать снимок
/camera on|off — включить или выключить камеру
/report — показать или скрыть отчёт
/score — текущий счёт
/finish — завершить инспекцию и получить оценку
/restart — начать заново`

	msgHelp = `ℹ️ Луч задаётся точкой камеры (x y z) и направлением (dx dy dz).

💡 Рекомендации:
• Зелёный прицел — хороший кадр, красный — дефекта нет в кадре
• Каждый дефект можно сфотографировать только один раз
• Пропущенные дефекты дают 0 очков в итоговой оценке

📸 Отправьте фото, чтобы использовать его как кадр камеры.`

	msgNoSession       = "⚠️ Сессия не начата. Отправьте /start."
	msgBadRay          = "❓ Нужно шесть чисел: x y z dx dy dz."
	msgSensorDisabled  = "📷 Камера выключена. Включите её командой /camera on."
	msgNoTarget        = "🔴 Дефекта в кадре нет."
	msgAlreadyScanned  = "♻️ Этот дефект уже в отчёте."
	msgCaptureFailed   = "⚠️ Не удалось сделать снимок. Попробуйте ещё раз."
	msgFinished        = "🏁 Инспекция завершена. Отправьте /restart для новой попытки."
	msgRestarted       = "🔄 Сцена перезапущена."
	msgReportHidden    = "📋 Отчёт скрыт."
	msgReportEmpty     = "📋 Отчёт пуст."
	msgCameraUsage     = "❓ Используйте /camera on или /camera off."
	msgFrameSet        = "🖼 Кадр камеры обновлён."
	msgProcessingError = "⚠️ Не удалось обработать изображение."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
)

// sender отправка сообщений в Telegram
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type chatSession struct {
	session *app.Session
	camera  *vision.FrameCapturer
}

// Bot представляет Telegram-бота: одна сессия инспекции на чат
type Bot struct {
	api       *tgbotapi.BotAPI
	out       sender
	container *container.Container
	log       *zap.Logger

	mu       sync.Mutex
	sessions map[int64]*chatSession
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info("authorized on account", zap.String("username", api.Self.UserName))

	b := newBot(api, c, log)
	b.api = api
	return b, nil
}

func newBot(out sender, c *container.Container, log *zap.Logger) *Bot {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bot{
		out:       out,
		container: c,
		log:       log.Named("telegram"),
		sessions:  make(map[int64]*chatSession),
	}
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context) error {
	if b.api == nil {
		return errors.New("telegram api is not configured")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.closeSessions()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg)
		return
	}

	b.sendMessage(msg.Chat.ID, msgUnknownCommand)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		if err := b.startSession(chatID); err != nil {
			b.log.Error("start session", zap.Int64("chat_id", chatID), zap.Error(err))
			b.sendMessage(chatID, msgProcessingError)
			return
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	default:
		cs := b.session(chatID)
		if cs == nil {
			b.sendMessage(chatID, msgNoSession)
			return
		}
		b.handleSessionCommand(ctx, msg, cs)
	}
}

func (b *Bot) handleSessionCommand(ctx context.Context, msg *tgbotapi.Message, cs *chatSession) {
	chatID := msg.Chat.ID
	s := cs.session

	switch msg.Command() {
	case "shoot":
		ray, err := parseRay(msg.CommandArguments())
		if err != nil {
			b.sendMessage(chatID, msgBadRay)
			return
		}
		b.shoot(ctx, chatID, s, ray)

	case "aim":
		ray, err := parseRay(msg.CommandArguments())
		if err != nil {
			b.sendMessage(chatID, msgBadRay)
			return
		}
		sig := s.Aim(ctx, ray)
		b.sendMessage(chatID, aimText(sig))

	case "camera":
		switch strings.TrimSpace(msg.CommandArguments()) {
		case "on":
			s.SetCamera(true)
			b.sendMessage(chatID, "📷 Камера включена.")
		case "off":
			s.SetCamera(false)
			b.sendMessage(chatID, "📷 Камера выключена.")
		default:
			b.sendMessage(chatID, msgCameraUsage)
		}

	case "report":
		visible, err := s.ToggleReport(ctx)
		if err != nil {
			b.log.Error("toggle report", zap.Error(err))
		}
		if !visible {
			b.sendMessage(chatID, msgReportHidden)
		}

	case "score":
		b.sendMessage(chatID, fmt.Sprintf("🎯 Счёт: %d", s.LiveScore()))

	case "finish":
		if s.Finished() {
			b.sendMessage(chatID, msgFinished)
			return
		}
		// Карточка оценок уходит через chatSink.
		s.Finish(ctx)

	case "restart":
		if err := s.Restart(ctx); err != nil {
			b.log.Error("restart session", zap.Error(err))
			b.sendMessage(chatID, msgProcessingError)
			return
		}
		b.sendMessage(chatID, msgRestarted)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

func (b *Bot) shoot(ctx context.Context, chatID int64, s *app.Session, ray entity.Ray) {
	res, err := s.Shoot(ctx, ray)
	if errors.Is(err, entity.ErrSessionFinished) {
		b.sendMessage(chatID, msgFinished)
		return
	}

	switch res.Outcome {
	case app.OutcomeScanned:
		b.sendCapture(chatID, res.Defect)
	case app.OutcomeSensorDisabled:
		b.sendMessage(chatID, msgSensorDisabled)
	case app.OutcomeAlreadyScanned:
		b.sendMessage(chatID, msgAlreadyScanned)
	case app.OutcomeCaptureFailed:
		b.sendMessage(chatID, msgCaptureFailed)
	default:
		if err != nil {
			b.log.Error("shoot", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		b.sendMessage(chatID, msgNoTarget)
	}
}

// handlePhoto кладёт присланное фото на поверхность камеры
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	cs := b.session(msg.Chat.ID)
	if cs == nil {
		b.sendMessage(msg.Chat.ID, msgNoSession)
		return
	}

	// Берём файл с максимальным разрешением
	photo := msg.Photo[len(msg.Photo)-1]

	imageData, err := b.downloadFile(ctx, photo.FileID)
	if err != nil {
		b.log.Error("download photo", zap.Error(err))
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	if err := cs.camera.SetFrame(imageData); err != nil {
		b.log.Error("set camera frame", zap.Error(err))
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}
	b.sendMessage(msg.Chat.ID, msgFrameSet)
}

func (b *Bot) startSession(chatID int64) error {
	session, camera, err := b.container.NewSession(container.Sinks{
		Report: &chatSink{bot: b, chatID: chatID},
		Grade:  &chatSink{bot: b, chatID: chatID},
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	old := b.sessions[chatID]
	b.sessions[chatID] = &chatSession{session: session, camera: camera}
	b.mu.Unlock()

	if old != nil {
		old.close()
	}
	return nil
}

func (b *Bot) session(chatID int64) *chatSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[chatID]
}

func (b *Bot) closeSessions() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, cs := range b.sessions {
		cs.close()
		delete(b.sessions, id)
	}
}

func (cs *chatSession) close() {
	cs.session.Close()
	_ = cs.camera.Close()
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	if b.api == nil {
		return nil, errors.New("telegram api is not configured")
	}

	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.out.Send(msg); err != nil {
		b.log.Error("send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// sendCapture отправляет снимок дефекта с оценками
func (b *Bot) sendCapture(chatID int64, d *entity.Defect) {
	caption := fmt.Sprintf("✅ %s\nРасстояние: %d / 100\nУгол: %d / 100\nВсего: %d / %d",
		d.Classification, d.DistanceScore, d.AngleScore, d.TotalScore(), entity.MaxScorePerDefect)

	if d.Capture == nil || len(d.Capture.Data) == 0 {
		b.sendMessage(chatID, caption)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: d.ID + ".jpg", Bytes: d.Capture.Data})
	photo.Caption = caption
	if _, err := b.out.Send(photo); err != nil {
		b.log.Error("send photo", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// parseRay разбирает "x y z dx dy dz"
func parseRay(args string) (entity.Ray, error) {
	fields := strings.Fields(args)
	if len(fields) != 6 {
		return entity.Ray{}, fmt.Errorf("expected 6 numbers, got %d", len(fields))
	}

	var v [6]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return entity.Ray{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return entity.Ray{}, fmt.Errorf("field %d: %q is not a finite number", i+1, f)
		}
		v[i] = n
	}

	ray := entity.Ray{
		Origin:    entity.Vec3{X: v[0], Y: v[1], Z: v[2]},
		Direction: entity.Vec3{X: v[3], Y: v[4], Z: v[5]},
	}
	if ray.Direction.Length() == 0 {
		return entity.Ray{}, errors.New("direction must be non-zero")
	}
	return ray, nil
}

func aimText(sig app.ReticleSignal) string {
	if !sig.OnTarget {
		return msgNoTarget
	}
	icon := "🟢"
	switch {
	case sig.Score < 0.4:
		icon = "🔴"
	case sig.Score < 0.75:
		icon = "🟡"
	}
	r, g, bl, _ := sig.Color.RGBA()
	return fmt.Sprintf("%s Качество кадра: %.0f%% (#%02X%02X%02X)", icon, sig.Score*100, r, g, bl)
}

// chatSink выводит отчёт и итог сессии в чат
type chatSink struct {
	bot    *Bot
	chatID int64
}

func (s *chatSink) RenderReport(ctx context.Context, rows []port.ReportRow, visible bool) error {
	if !visible {
		return nil
	}
	if len(rows) == 0 {
		s.bot.sendMessage(s.chatID, msgReportEmpty)
		return nil
	}

	var sb strings.Builder
	sb.WriteString("📋 Отчёт\n")
	for _, r := range rows {
		sb.WriteString("\n")
		sb.WriteString(terminal.ReportLine(r))
	}
	s.bot.sendMessage(s.chatID, sb.String())
	return nil
}

func (s *chatSink) RenderGrade(ctx context.Context, grade entity.FinalGrade) error {
	var sb strings.Builder
	sb.WriteString("🏁 Итоговая карточка\n")
	for _, e := range grade.Entries {
		fmt.Fprintf(&sb, "\n%s — %s\nPicture Distance: %d / 100\nPicture Angle: %d / 100\nClassification: %d / 100\n",
			e.Classification, e.Letter, e.DistanceScore, e.AngleScore, e.ClassificationScore)
	}
	sb.WriteString("\n")
	sb.WriteString(terminal.FinalLine(grade))
	s.bot.sendMessage(s.chatID, sb.String())
	return nil
}

var (
	_ port.ReportSink = (*chatSink)(nil)
	_ port.GradeSink  = (*chatSink)(nil)
)
