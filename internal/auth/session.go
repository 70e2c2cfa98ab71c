package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/plajta/depo-service/internal/config"
	"github.com/plajta/depo-service/internal/entities"
	"github.com/plajta/depo-service/internal/pocketbase"

	"github.com/gorilla/sessions"
)

const (
	sessionName     = "pb_auth"
	usersCollection = "users"

	keyToken = "token"
	keyID    = "user_id"
	keyName  = "name"
	keyEmail = "email"
)

// Authenticator — парольная аутентификация хранилища записей.
type Authenticator interface {
	AuthWithPassword(ctx context.Context, collection, identity, password string) (pocketbase.AuthResult, error)
}

// Service хранит токен оператора в подписанной cookie и отвечает на
// вопросы "кто вошёл" и "вошёл ли вообще". Одна активная сессия на клиент.
type Service struct {
	logger *slog.Logger
	pb     Authenticator
	store  sessions.Store
}

func NewService(logger *slog.Logger, pb Authenticator, cfg config.Session) *Service {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Service{
		logger: logger.With(slog.String("component", "auth")),
		pb:     pb,
		store:  store,
	}
}

// Login аутентифицирует оператора и сохраняет токен в cookie.
// При отказе состояние сессии не меняется.
func (s *Service) Login(w http.ResponseWriter, r *http.Request, email, password string) (entities.User, error) {
	result, err := s.pb.AuthWithPassword(r.Context(), usersCollection, email, password)
	if errors.Is(err, pocketbase.ErrInvalidCredentials) {
		return entities.User{}, entities.ErrInvalidCredentials
	}
	if err != nil {
		return entities.User{}, fmt.Errorf("%w: login failed: %v", entities.ErrBackendUnavailable, err)
	}

	// ошибка декодирования старой cookie даёт свежую сессию, это не сбой
	sess, _ := s.store.Get(r, sessionName)
	sess.Values[keyToken] = result.Token
	sess.Values[keyID] = result.Record.ID
	sess.Values[keyName] = result.Record.Name
	sess.Values[keyEmail] = result.Record.Email

	if err := sess.Save(r, w); err != nil {
		return entities.User{}, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("operator logged in", slog.String("user_id", result.Record.ID))
	return entities.User{
		ID:    result.Record.ID,
		Name:  result.Record.Name,
		Email: result.Record.Email,
	}, nil
}

// Logout безусловно сбрасывает сессию. Не возвращает ошибок.
func (s *Service) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := s.store.Get(r, sessionName)
	sess.Options.MaxAge = -1

	if err := sess.Save(r, w); err != nil {
		s.logger.Error("failed to clear session", slog.Any("error", err))
	}
}

// CurrentUser читает сохранённый токен и, если он корректен и не истёк,
// возвращает связанного оператора.
func (s *Service) CurrentUser(r *http.Request) (entities.User, bool) {
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		return entities.User{}, false
	}

	token, ok := sess.Values[keyToken].(string)
	if !ok || token == "" {
		return entities.User{}, false
	}

	exp, ok := pocketbase.TokenExpiry(token)
	if !ok || time.Now().After(exp) {
		return entities.User{}, false
	}

	user := entities.User{}
	user.ID, _ = sess.Values[keyID].(string)
	user.Name, _ = sess.Values[keyName].(string)
	user.Email, _ = sess.Values[keyEmail].(string)
	return user, true
}
