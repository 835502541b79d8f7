package controllers

import (
	"Backend-PMS/src/middleware"
	"Backend-PMS/src/models"
	"Backend-PMS/src/services/auth"
	"Backend-PMS/src/utils"

	"github.com/gofiber/fiber/v2"
)

// AccountController serves the per-role account routes and the role-agnostic login.
type AccountController struct {
	auth *auth.Service
}

func NewAccountController(svc *auth.Service) *AccountController {
	return &AccountController{auth: svc}
}

func invalidBody() error {
	return utils.ValidationError("Invalid request format")
}

// Register godoc
// @Summary      Register an account
// @Description  Create an account in the role's collection. The email must not exist under any role.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        role path string true "students | faculty | tpo | admin"
// @Param        body body object true "Account fields including email and password"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/{role}/register [post]
func (ac *AccountController) Register(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]any
		if err := c.BodyParser(&body); err != nil {
			return utils.HandleError(c, invalidBody(), "")
		}

		acc, password, err := auth.NewAccountFromFields(role, body)
		if err != nil {
			return utils.HandleError(c, err, "")
		}

		created, err := ac.auth.Register(c.UserContext(), role, acc, password)
		if err != nil {
			return utils.HandleError(c, err, "Registration failed")
		}

		return c.JSON(fiber.Map{
			"message":    "Registration successful",
			string(role): created,
		})
	}
}

// Login godoc
// @Summary      Log in to a role
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        role path string true "students | faculty | tpo | admin"
// @Param        body body models.LoginRequest true "Credentials"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      429  {object}  models.ErrorResponse
// @Router       /api/{role}/login [post]
func (ac *AccountController) Login(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.HandleError(c, invalidBody(), "")
		}

		res, err := ac.auth.Login(c.UserContext(), role, req.Email, req.Password)
		if err != nil {
			return utils.HandleError(c, err, "Login failed")
		}

		c.Set("X-Frame-Options", "DENY")
		c.Set("X-Content-Type-Options", "nosniff")
		return c.JSON(fiber.Map{
			"message":    "Login successful",
			"token":      res.Token,
			string(role): res.Account,
		})
	}
}

// ResolveLogin godoc
// @Summary      Log in without a role
// @Description  Finds the role holding the email and authenticates against it.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        body body models.LoginRequest true "Credentials"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Failure      429  {object}  models.ErrorResponse
// @Router       /api/login [post]
func (ac *AccountController) ResolveLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.HandleError(c, invalidBody(), "")
	}

	res, err := ac.auth.ResolveLogin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return utils.HandleError(c, err, "Server error")
	}

	c.Set("X-Frame-Options", "DENY")
	c.Set("X-Content-Type-Options", "nosniff")
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"role":    res.Role,
		"token":   res.Token,
		"user":    res.Account,
	})
}

// ForgotPassword godoc
// @Summary      Request a password reset
// @Description  Always answers the same way. Without a mail transport the reset token is returned as resetToken.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        role path string true "students | faculty | tpo | admin"
// @Param        body body models.ForgotPasswordRequest true "Email"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      500  {object}  models.ErrorResponse
// @Router       /api/{role}/forgot [post]
func (ac *AccountController) ForgotPassword(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ForgotPasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.HandleError(c, invalidBody(), "")
		}

		res, err := ac.auth.ForgotPassword(c.UserContext(), role, req.Email)
		if err != nil {
			return utils.HandleError(c, err, "Failed to process password reset")
		}

		resp := fiber.Map{"message": "If the email is registered, a password reset link has been sent"}
		if res.Token != "" {
			resp["resetToken"] = res.Token
		}
		return c.JSON(resp)
	}
}

// ResetPassword godoc
// @Summary      Reset a password with a reset token
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        role  path string true "students | faculty | tpo | admin"
// @Param        token path string true "Raw reset token"
// @Param        body  body models.ResetPasswordRequest true "New password"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/{role}/reset/{token} [post]
func (ac *AccountController) ResetPassword(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ResetPasswordRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.HandleError(c, invalidBody(), "")
		}

		if err := ac.auth.ResetPassword(c.UserContext(), role, c.Params("token"), req.Password); err != nil {
			return utils.HandleError(c, err, "Failed to reset password")
		}
		return c.JSON(fiber.Map{"message": "Password reset successful"})
	}
}

// Update godoc
// @Summary      Update an account
// @Description  Patches the account holding body.email. role, email and accessLevel are ignored.
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        role path string true "students | faculty | tpo | admin"
// @Param        body body object true "email plus the fields to change"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/{role}/update [post]
func (ac *AccountController) Update(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]any
		if err := c.BodyParser(&body); err != nil {
			return utils.HandleError(c, invalidBody(), "")
		}

		email, _ := body["email"].(string)
		updated, err := ac.auth.Update(c.UserContext(), role, email, body)
		if err != nil {
			return utils.HandleError(c, err, "Server error")
		}

		return c.JSON(fiber.Map{
			"message":    "Changes Saved",
			string(role): updated,
		})
	}
}

// List godoc
// @Summary      List accounts of a role
// @Description  Requires a session of the same role or admin.
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        role path string true "students | faculty | tpo | admin"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /api/{role} [get]
func (ac *AccountController) List(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := middleware.SessionRole(c)
		if session != role && session != models.RoleAdmin {
			return utils.HandleError(c, utils.ForbiddenError("Not allowed to list %s accounts", role), "")
		}

		list, err := ac.auth.List(c.UserContext(), role)
		if err != nil {
			return utils.HandleError(c, err, "Failed to list accounts")
		}
		return c.JSON(fiber.Map{role.Collection(): list})
	}
}
