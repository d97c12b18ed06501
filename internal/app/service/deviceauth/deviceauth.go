package deviceauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/gymgate/internal/models"
	cfgpkg "github.com/fatflowers/gymgate/pkg/config"
	"github.com/fatflowers/gymgate/pkg/tool"
)

var ErrInvalidToken = errors.New("invalid device token")

// DeviceContext is the authenticated device identity attached to kiosk
// requests. Everything tenant-scoped downstream keys off CompanyID.
type DeviceContext struct {
	DeviceID  string
	CompanyID string
}

type deviceClaims struct {
	CompanyID string `json:"company_id"`
	jwt.StandardClaims
}

// Service registers kiosk devices and issues/verifies their time-limited
// session tokens.
type Service struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	secret []byte
	ttl    time.Duration
}

func NewService(db *gorm.DB, cfg *cfgpkg.Config, log *zap.SugaredLogger) *Service {
	ttl := cfg.Auth.DeviceTokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		db:     db,
		log:    log,
		secret: []byte(cfg.Auth.DeviceTokenSecret),
		ttl:    ttl,
	}
}

// Register creates a device bound to one company.
func (s *Service) Register(ctx context.Context, companyID, name string) (*models.Device, error) {
	d := &models.Device{
		ID:        tool.GenerateUUIDV7(),
		CompanyID: companyID,
		Name:      name,
		Active:    true,
	}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}
	return d, nil
}

// IssueToken mints a session token for an active device.
func (s *Service) IssueToken(ctx context.Context, deviceID string) (string, error) {
	var d models.Device
	err := s.db.WithContext(ctx).Where("id = ? AND active = true", deviceID).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to load device: %w", err)
	}

	now := time.Now()
	claims := deviceClaims{
		CompanyID: d.CompanyID,
		StandardClaims: jwt.StandardClaims{
			Subject:   d.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign device token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a session token and returns the device context.
func (s *Service) VerifyToken(tokenString string) (*DeviceContext, error) {
	var claims deviceClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.CompanyID == "" {
		return nil, ErrInvalidToken
	}
	return &DeviceContext{DeviceID: claims.Subject, CompanyID: claims.CompanyID}, nil
}
