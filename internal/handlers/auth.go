package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lumenworks/sitecms/internal/config"
	"github.com/lumenworks/sitecms/internal/utils"
)

// AuthHandler handles admin login and session routes
type AuthHandler struct {
	Cfg *config.Config
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
// @Summary Admin login
// @Description Exchange admin credentials for a signed token
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Admin credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, "Invalid request body", fiber.StatusBadRequest, "login")
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.Cfg.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.Cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		return utils.ErrorResponse(c, "Invalid credentials", fiber.StatusUnauthorized, "login")
	}

	expires := time.Now().Add(time.Duration(h.Cfg.TokenTTLHours) * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  req.Username,
		"role": "admin",
		"exp":  expires.Unix(),
		"iat":  time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(h.Cfg.JWTSecret))
	if err != nil {
		return utils.ErrorResponse(c, "Failed to sign token", fiber.StatusInternalServerError, "login")
	}

	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    signed,
		Expires:  expires,
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":    true,
		"token": signed,
		"user":  req.Username,
	})
}

// Logout handles POST /api/auth/logout
// @Summary Admin logout
// @Description Clear the auth cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SavedResponseStruct
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "auth_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return utils.OkResponse(c)
}

// Me handles GET /api/auth/me
// @Summary Current session
// @Description Return the authenticated admin identity
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ok":   true,
		"user": c.Locals("user"),
	})
}
