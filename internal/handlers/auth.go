package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type authCredentials struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// signUpRequest adds the athlete's age, used as the default for sessions.
type signUpRequest struct {
	authCredentials
	Age int `json:"age" binding:"required"`
}

// bindJSON decodes the body into dst. On failure it answers 400 and
// returns false.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	if h.log != nil {
		h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
	return false
}

// @Summary      Register an athlete
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "{\"username\":\"u\",\"password\":\"p\",\"age\":30}"
// @Success      200   {object}  map[string]int
// @Failure      400   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	var req signUpRequest
	if !h.bindJSON(c, &req) {
		return
	}
	id, err := h.services.SignUp(req.Username, req.Password, req.Age)
	if err != nil {
		if h.log != nil {
			h.log.Infow("sign_up_rejected", "username", req.Username, "age", req.Age, "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "{\"username\":\"u\",\"password\":\"p\"}"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	var req authCredentials
	if !h.bindJSON(c, &req) {
		return
	}
	token, err := h.services.GenerateToken(req.Username, req.Password)
	if err != nil {
		// unknown user and wrong password look the same to the client
		if h.log != nil {
			h.log.Infow("sign_in_rejected", "username", req.Username, "err", err)
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
