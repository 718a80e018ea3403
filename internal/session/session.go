package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alexedwards/scs/v2"

	"shopfront/internal/domain"
)

// Claves de sesión. Campos tipados y fijos: el estado de reset pendiente es
// un registro por sesión, no entradas dinámicas por email.
const (
	keyUser          = "user"
	keyResetEmail    = "reset_email"
	keyResetIssuedAt = "reset_issued_at"
	keyFlashCategory = "flash_category"
	keyFlashMessage  = "flash_message"
	keyCart          = "cart"
)

// Flash es un aviso de un solo uso que se limpia al mostrarse.
type Flash struct {
	Category string
	Message  string
}

// PendingReset describe la recuperación de contraseña en curso de la sesión.
// El código OTP en sí vive en el OTP store con su propio TTL.
type PendingReset struct {
	Email    string
	IssuedAt time.Time
}

// Manager envuelve scs.SessionManager con accesores tipados para el estado
// que usan los flujos de auth, carrito y mensajes flash.
type Manager struct {
	*scs.SessionManager
}

// NewManager configura sesiones con expiración deslizante de 30 días. La
// cookie se vuelve persistente recién en el login (RememberMe).
func NewManager(store scs.Store) *Manager {
	sm := scs.New()
	sm.IdleTimeout = 30 * 24 * time.Hour
	sm.Lifetime = 90 * 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.Persist = false
	if store != nil {
		sm.Store = store
	}
	return &Manager{SessionManager: sm}
}

// UserEmail devuelve el email logueado, o vacío para sesiones anónimas.
func (m *Manager) UserEmail(ctx context.Context) string {
	return m.GetString(ctx, keyUser)
}

// Login registra la identidad y marca la sesión como persistente. El token
// se renueva para no heredar uno emitido antes de autenticar.
func (m *Manager) Login(ctx context.Context, email string) error {
	if err := m.RenewToken(ctx); err != nil {
		return err
	}
	m.Put(ctx, keyUser, email)
	m.RememberMe(ctx, true)
	return nil
}

// Logout limpia la identidad. Es un no-op válido en sesiones anónimas.
func (m *Manager) Logout(ctx context.Context) {
	m.Remove(ctx, keyUser)
}

// SetFlash guarda el aviso pendiente; uno por vez, el último pisa.
func (m *Manager) SetFlash(ctx context.Context, category, message string) {
	m.Put(ctx, keyFlashCategory, category)
	m.Put(ctx, keyFlashMessage, message)
}

// PopFlash devuelve y consume el aviso pendiente.
func (m *Manager) PopFlash(ctx context.Context) (Flash, bool) {
	message := m.PopString(ctx, keyFlashMessage)
	category := m.PopString(ctx, keyFlashCategory)
	if message == "" {
		return Flash{}, false
	}
	return Flash{Category: category, Message: message}, true
}

// SetPendingReset registra el email en recuperación. A lo sumo uno por sesión.
func (m *Manager) SetPendingReset(ctx context.Context, email string) {
	m.Put(ctx, keyResetEmail, email)
	m.Put(ctx, keyResetIssuedAt, time.Now().UTC().Format(time.RFC3339))
}

// PendingReset devuelve el reset en curso, si hay uno.
func (m *Manager) PendingReset(ctx context.Context) (PendingReset, bool) {
	email := m.GetString(ctx, keyResetEmail)
	if email == "" {
		return PendingReset{}, false
	}
	issuedAt, _ := time.Parse(time.RFC3339, m.GetString(ctx, keyResetIssuedAt))
	return PendingReset{Email: email, IssuedAt: issuedAt}, true
}

// ClearPendingReset descarta el reset en curso.
func (m *Manager) ClearPendingReset(ctx context.Context) {
	m.Remove(ctx, keyResetEmail)
	m.Remove(ctx, keyResetIssuedAt)
}

// Cart devuelve las líneas del carrito de la sesión.
func (m *Manager) Cart(ctx context.Context) []domain.CartItem {
	raw := m.GetString(ctx, keyCart)
	if raw == "" {
		return nil
	}
	var items []domain.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

// SetCart reemplaza el carrito de la sesión.
func (m *Manager) SetCart(ctx context.Context, items []domain.CartItem) {
	if len(items) == 0 {
		m.Remove(ctx, keyCart)
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	m.Put(ctx, keyCart, string(raw))
}
