package session

import (
	"encoding/json"
	"time"

	"github.com/Pakhtun2017/compliance-checker/internal/utils"
	"github.com/labstack/echo/v4"
)

// cookiePayload is what gets sealed into the cookie. ExpiresAt is checked on
// every Get, so a replayed cookie stops working once the TTL has passed.
type cookiePayload struct {
	Session   *Session `json:"session"`
	ExpiresAt int64    `json:"exp"`
}

// CookieStore keeps the whole session sealed inside the cookie
type CookieStore struct {
	codec *Codec
	ttl   time.Duration
	now   func() time.Time
}

func NewCookieStore(codec *Codec, ttl time.Duration) *CookieStore {
	return &CookieStore{codec: codec, ttl: ttl, now: time.Now}
}

func (s *CookieStore) Get(c echo.Context) (*Session, error) {
	cookie, err := c.Cookie(utils.CookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}, nil
	}

	plaintext, err := s.codec.Decode(cookie.Value)
	if err != nil {
		return &Session{}, ErrInvalidSession
	}

	var payload cookiePayload
	if err := json.Unmarshal(plaintext, &payload); err != nil || payload.Session == nil {
		return &Session{}, ErrInvalidSession
	}

	// Expired sessions read as fresh ones
	if !s.now().Before(time.Unix(payload.ExpiresAt, 0)) {
		return &Session{}, nil
	}

	return payload.Session, nil
}

func (s *CookieStore) Save(c echo.Context, sess *Session) error {
	data, err := json.Marshal(cookiePayload{
		Session:   sess,
		ExpiresAt: s.now().Add(s.ttl).Unix(),
	})
	if err != nil {
		return err
	}

	encoded, err := s.codec.Encode(data)
	if err != nil {
		return err
	}

	setCookie(c, encoded, s.ttl)
	return nil
}

func (s *CookieStore) Destroy(c echo.Context) error {
	clearCookie(c)
	return nil
}
