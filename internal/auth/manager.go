// Package auth はセッションベースの認証フロー（登録・ログイン・ログアウト）を提供します。
package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/note-keeper/internal/user"
)

const (
	SessionCookieName = "nk_session"
	sessionKeyLogin   = "isLoggedIn"
	sessionKeyUserID  = "userId"

	// bcryptCost はパスワードハッシュの固定ワークファクターです。
	bcryptCost = 12

	minPasswordLength = 6
)

var maxSessionLifetime = 12 * time.Hour

// ユーザー向けメッセージ。登録・ログイン画面にそのまま表示されます。
// ログイン失敗は email 不在とパスワード不一致で同一文言を返し、
// アカウントの存在を推測されないようにします。
const (
	msgRegisterInvalid  = "Будь ласка, заповніть усі поля. Пароль має бути не менше 6 символів."
	msgRegisterConflict = "Користувач з таким email вже зареєстрований."
	msgRegisterFailed   = "Помилка сервера. Спробуйте пізніше."
	msgLoginInvalid     = "Будь ласка, введіть email та пароль."
	msgLoginMismatch    = "Неправильний email або пароль."
	msgLoginFailed      = "Помилка сервера при вході."
	msgLoginThrottled   = "Забагато спроб входу. Спробуйте пізніше."
)

// SessionMaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds() int {
	return int(maxSessionLifetime.Seconds())
}

// ContextUserIDKey は、ハンドラー間でログイン済みユーザーIDを共有するためのキーです。
const ContextUserIDKey = "auth.userId"

// Manager は認証ハンドラーと依存コンポーネントをまとめた構造体です。
type Manager struct {
	users   user.Repository
	limiter *LoginLimiter // nilの場合は試行制限なし
}

// NewManager は認証マネージャーを作成します。limiter は nil を許容します。
func NewManager(users user.Repository, limiter *LoginLimiter) *Manager {
	return &Manager{
		users:   users,
		limiter: limiter,
	}
}

// RedirectIfLoggedIn はログイン済みの利用者を /notes へ逃がすミドルウェアを返します。
// 登録・ログインフォームのGETにのみ適用します。
func (m *Manager) RedirectIfLoggedIn() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if loggedIn, ok := session.Get(sessionKeyLogin).(bool); ok && loggedIn {
			c.Redirect(http.StatusFound, "/notes")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireLogin はセッションを検証するミドルウェアを返します。
// 未ログインの場合は /login へリダイレクトします。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		loggedIn, ok := session.Get(sessionKeyLogin).(bool)
		if !ok || !loggedIn {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if id, ok := session.Get(sessionKeyUserID).(string); ok {
			c.Set(ContextUserIDKey, id)
		}
		c.Next()
	}
}

// GetRegister は GET /register のハンドラーです。
func (m *Manager) GetRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{
		"pageTitle":    "Реєстрація",
		"errorMessage": nil,
		"username":     "",
		"email":        "",
	})
}

// PostRegister は POST /register のハンドラーです。
// 検証 → email重複チェック → ハッシュ化 → 保存 → セッション更新の順で処理します。
func (m *Manager) PostRegister(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")

	if username == "" || email == "" || password == "" || len(password) < minPasswordLength {
		m.renderRegister(c, msgRegisterInvalid, username, email)
		return
	}

	ctx := c.Request.Context()

	_, err := m.users.GetByEmail(ctx, email)
	if err == nil {
		m.renderRegister(c, msgRegisterConflict, username, email)
		return
	}
	if !errors.Is(err, user.ErrNotFound) {
		log.Printf("register: email lookup failed: %v", err)
		m.renderRegister(c, msgRegisterFailed, username, email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		log.Printf("register: password hash failed: %v", err)
		m.renderRegister(c, msgRegisterFailed, username, email)
		return
	}

	u, err := m.users.Create(ctx, &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		// 一意制約が check-then-insert の競合を拾った場合も重複として扱う
		if errors.Is(err, user.ErrDuplicateEmail) {
			m.renderRegister(c, msgRegisterConflict, username, email)
			return
		}
		log.Printf("register: user create failed: %v", err)
		m.renderRegister(c, msgRegisterFailed, username, email)
		return
	}

	// セッション保存の失敗はログのみ。リダイレクトは止めません。
	m.startSession(c, u.ID, "register")
	log.Printf("user registered and logged in: %s", u.Email)
	c.Redirect(http.StatusFound, "/notes")
}

// GetLogin は GET /login のハンドラーです。
func (m *Manager) GetLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"pageTitle":    "Вхід",
		"errorMessage": nil,
		"email":        "",
	})
}

// PostLogin は POST /login のハンドラーです。
func (m *Manager) PostLogin(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	if email == "" || password == "" {
		m.renderLogin(c, msgLoginInvalid, email)
		return
	}

	ctx := c.Request.Context()

	if m.limiter != nil {
		allowed, err := m.limiter.Allow(ctx, c.ClientIP())
		if err != nil {
			// カウンターストア障害時はフェイルオープン
			log.Printf("login: attempt limiter unavailable: %v", err)
		} else if !allowed {
			m.renderLogin(c, msgLoginThrottled, email)
			return
		}
	}

	u, err := m.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// email不在とパスワード不一致は同一メッセージ
			m.recordFailure(ctx, c.ClientIP())
			m.renderLogin(c, msgLoginMismatch, email)
			return
		}
		log.Printf("login: email lookup failed: %v", err)
		m.renderLogin(c, msgLoginFailed, email)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		m.recordFailure(ctx, c.ClientIP())
		m.renderLogin(c, msgLoginMismatch, email)
		return
	}

	if m.limiter != nil {
		if err := m.limiter.Reset(ctx, c.ClientIP()); err != nil {
			log.Printf("login: attempt limiter reset failed: %v", err)
		}
	}

	m.startSession(c, u.ID, "login")
	log.Printf("user logged in: %s", u.Email)
	c.Redirect(http.StatusFound, "/notes")
}

// PostLogout は POST /logout のハンドラーです。
// セッション破棄の失敗はログのみで、常に / へリダイレクトします。
func (m *Manager) PostLogout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		log.Printf("logout: session destroy failed: %v", err)
	}
	c.Redirect(http.StatusFound, "/")
}

func (m *Manager) startSession(c *gin.Context, userID, flow string) {
	session := sessions.Default(c)
	session.Set(sessionKeyLogin, true)
	session.Set(sessionKeyUserID, userID)
	if err := session.Save(); err != nil {
		log.Printf("%s: session save failed: %v", flow, err)
	}
}

func (m *Manager) recordFailure(ctx context.Context, ip string) {
	if m.limiter == nil {
		return
	}
	if err := m.limiter.RecordFailure(ctx, ip); err != nil {
		log.Printf("login: attempt limiter record failed: %v", err)
	}
}

func (m *Manager) renderRegister(c *gin.Context, message, username, email string) {
	c.HTML(http.StatusOK, "register.html", gin.H{
		"pageTitle":    "Реєстрація",
		"errorMessage": message,
		"username":     username,
		"email":        email,
	})
}

func (m *Manager) renderLogin(c *gin.Context, message, email string) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"pageTitle":    "Вхід",
		"errorMessage": message,
		"email":        email,
	})
}
