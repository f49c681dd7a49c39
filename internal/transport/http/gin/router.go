package httpgin

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/showtix/showtix-go/internal/service"
	"github.com/showtix/showtix-go/internal/service/auth"
	"github.com/showtix/showtix-go/internal/service/booking"
	"github.com/showtix/showtix-go/internal/service/catalog"
	"github.com/showtix/showtix-go/internal/service/rating"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(
	svcs *service.Services,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(
		gin.Recovery(),
		LoggingMiddleware(logger),
		RequestIDMiddleware(),
		CORS(),
		SessionMiddleware(svcs.Auth),
	)
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/", handleListShows(svcs))
	r.GET("/shows", handleListShows(svcs))
	r.GET("/shows/:id", handleGetShow(svcs))

	r.POST("/register", handleRegister(svcs))
	r.POST("/login", handleLogin(svcs))

	// Authenticated API
	authed := r.Group("", RequireAuth())
	{
		authed.POST("/logout", handleLogout(svcs))
		authed.POST("/book/:id", handleBookShow(svcs))
		authed.POST("/rate/:id", handleRateShow(svcs))
		authed.GET("/bookings", handleBookingHistory(svcs))
		authed.POST("/bookings/:id/cancel", handleCancelBooking(svcs))
	}

	// Admin API
	admin := r.Group("/admin", RequireAdmin())
	{
		admin.POST("/bookings/:id/complete", handleCompleteBooking(svcs))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  List shows
// @Description Average rating is null for unrated shows. user_can_rate is per caller.
// @Success  200  {array}   ShowSummaryResponse
// @Router   /shows [get]
func handleListShows(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var viewerID *int64
		if user, ok := currentUser(c); ok {
			viewerID = &user.ID
		}

		shows, err := svcs.Catalog.ListShows(c.Request.Context(), viewerID)
		if err != nil {
			respondErr(c, err)
			return
		}

		resp := make([]ShowSummaryResponse, 0, len(shows))
		for _, s := range shows {
			resp = append(resp, toShowSummaryResponse(s))
		}

		if viewerID == nil {
			// ETag + Cache-Control 30s, anonymous listing only
			writeJSONWithCache(c, http.StatusOK, resp, "public, max-age=30", true)
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Get show
// @Param    id  path  int  true  "Show ID"
// @Success  200  {object}  ShowResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /shows/{id} [get]
func handleGetShow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		show, err := svcs.Catalog.GetShow(c.Request.Context(), showID)
		if err != nil {
			respondErr(c, err)
			return
		}

		writeJSONWithCache(c, http.StatusOK, toShowResponse(*show), "public, max-age=15", true)
	}
}

// @Summary  Register account
// @Param    req body  RegisterRequest true "payload"
// @Success  201 {object} SessionResponse
// @Failure  400 {object} ErrorResponse "passwords do not match"
// @Failure  409 {object} ErrorResponse "username taken"
// @Router   /register [post]
func handleRegister(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		session, err := svcs.Auth.Register(
			c.Request.Context(),
			req.Username,
			req.Email,
			req.Password,
			req.PasswordConfirm,
		)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, SessionResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
			Username:  session.User.Username,
		})
	}
}

// @Summary  Log in
// @Param    req body  LoginRequest true "payload"
// @Success  200 {object} SessionResponse
// @Failure  401 {object} ErrorResponse "invalid username or password"
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /login [post]
func handleLogin(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		session, err := svcs.Auth.Login(
			c.Request.Context(),
			req.Username,
			req.Password,
			"ip:"+c.ClientIP(),
		)
		if err != nil {
			if errors.Is(err, auth.ErrTooManyAttempts) {
				c.Header("Retry-After", "60")
			}
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, SessionResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
			Username:  session.User.Username,
		})
	}
}

// @Summary  Log out
// @Security BearerAuth
// @Success  204
// @Router   /logout [post]
func handleLogout(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svcs.Auth.Logout(c.Request.Context(), bearerToken(c)); err != nil {
			respondErr(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// @Summary  Book tickets
// @Security BearerAuth
// @Param    id  path  int  true  "Show ID"
// @Param    req body  BookRequest true "payload"
// @Success  201 {object} BookingResponse
// @Failure  400 {object} ErrorResponse "invalid ticket count"
// @Failure  409 {object} ErrorResponse "not enough seats"
// @Router   /book/{id} [post]
func handleBookShow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req BookRequest
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, "invalid number of tickets")
			return
		}

		user, _ := currentUser(c)

		b, err := svcs.Booking.Create(c.Request.Context(), user.ID, showID, req.NumberOfTickets)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, toBookingResponse(*b))
	}
}

// @Summary  Rate a show
// @Security BearerAuth
// @Param    id  path  int  true  "Show ID"
// @Param    req body  RateRequest true "payload"
// @Success  201 {object} RatingResponse
// @Failure  400 {object} ErrorResponse "rating out of range"
// @Failure  403 {object} ErrorResponse "show not attended"
// @Failure  409 {object} ErrorResponse "already rated"
// @Router   /rate/{id} [post]
func handleRateShow(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		showID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		var req RateRequest
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, "invalid rating value")
			return
		}

		user, _ := currentUser(c)

		r, err := svcs.Rating.Rate(c.Request.Context(), user.ID, showID, req.Rating, req.Comment)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusCreated, RatingResponse{
			ID:      r.ID,
			ShowID:  r.ShowID,
			Rating:  r.Rating,
			Comment: r.Comment,
		})
	}
}

// @Summary  Booking history
// @Security BearerAuth
// @Success  200 {array} BookingResponse
// @Router   /bookings [get]
func handleBookingHistory(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := currentUser(c)

		bookings, err := svcs.Booking.History(c.Request.Context(), user.ID)
		if err != nil {
			respondErr(c, err)
			return
		}

		resp := make([]BookingResponse, 0, len(bookings))
		for _, b := range bookings {
			resp = append(resp, toBookingWithShowResponse(b))
		}

		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Cancel booking
// @Description Cancels an owned PENDING booking. Anything else is a silent no-op.
// @Security BearerAuth
// @Param    id  path  int  true  "Booking ID"
// @Success  200 {object} BookingResponse
// @Success  204 "nothing to cancel"
// @Router   /bookings/{id}/cancel [post]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		user, _ := currentUser(c)

		b, err := svcs.Booking.Cancel(c.Request.Context(), user.ID, bookingID)
		if err != nil {
			respondErr(c, err)
			return
		}

		if b == nil {
			c.Status(http.StatusNoContent)
			return
		}

		c.JSON(http.StatusOK, toBookingResponse(*b))
	}
}

// @Summary  Complete booking
// @Security BearerAuth
// @Param    id  path  int  true  "Booking ID"
// @Success  200 {object} BookingResponse
// @Failure  404 {object} ErrorResponse
// @Router   /admin/bookings/{id}/complete [post]
func handleCompleteBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}

		b, err := svcs.Booking.Complete(c.Request.Context(), bookingID)
		if err != nil {
			respondErr(c, err)
			return
		}

		c.JSON(http.StatusOK, toBookingResponse(*b))
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// auth service
	case errors.Is(err, auth.ErrPasswordMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "passwords do not match"})
		return
	case errors.Is(err, auth.ErrUsernameTaken):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "username already exists"})
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid username or password"})
		return
	case errors.Is(err, auth.ErrInvalidSession):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired session"})
		return
	case errors.Is(err, auth.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many login attempts"})
		return
	// catalog service
	case errors.Is(err, catalog.ErrShowNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "show not found"})
		return
	// booking service
	case errors.Is(err, booking.ErrShowNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "show not found"})
		return
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
		return
	case errors.Is(err, booking.ErrInvalidTicketCount):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "number of tickets must be greater than zero"})
		return
	case errors.Is(err, booking.ErrNotEnoughSeats):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "not enough seats available"})
		return
	// rating service
	case errors.Is(err, rating.ErrShowNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "show not found"})
		return
	case errors.Is(err, rating.ErrInvalidRating):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "rating must be between 1 and 5"})
		return
	case errors.Is(err, rating.ErrNotAttended):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "you can only rate shows you have attended"})
		return
	case errors.Is(err, rating.ErrAlreadyRated):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "you have already rated this show"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
