package router

import (
	"net/http"

	"github.com/wb-go/wbf/ginext"
)

type Handler interface {
	CreateRoom(c *ginext.Context)
	GetRoom(c *ginext.Context)
	QuoteRoom(c *ginext.Context)
	SetAvailabilityOverride(c *ginext.Context)
	CreateSeason(c *ginext.Context)
	ListSeasons(c *ginext.Context)
	DeleteSeason(c *ginext.Context)
	CreateBooking(c *ginext.Context)
	GetBooking(c *ginext.Context)
	ListBookings(c *ginext.Context)
	SubmitPaymentProof(c *ginext.Context)
	ConfirmBooking(c *ginext.Context)
	RejectBooking(c *ginext.Context)
	CancelBooking(c *ginext.Context)
	GatewayWebhook(c *ginext.Context)
}

func InitRouter(mode string, h Handler, mw ...ginext.HandlerFunc) *ginext.Engine {
	router := ginext.New(mode)
	router.Use(mw...)

	api := router.Group("/api")
	{
		// Rooms & availability
		api.POST("/rooms", h.CreateRoom)
		api.GET("/rooms/:id", h.GetRoom)
		api.GET("/rooms/:id/quote", h.QuoteRoom)
		api.PUT("/rooms/:id/availability", h.SetAvailabilityOverride)

		// Peak seasons
		api.POST("/properties/:id/seasons", h.CreateSeason)
		api.GET("/properties/:id/seasons", h.ListSeasons)
		api.DELETE("/seasons/:id", h.DeleteSeason)

		// Bookings
		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings", h.ListBookings)
		api.GET("/bookings/:id", h.GetBooking)
		api.POST("/bookings/:id/payment-proof", h.SubmitPaymentProof)
		api.POST("/bookings/:id/confirm", h.ConfirmBooking)
		api.POST("/bookings/:id/reject", h.RejectBooking)
		api.POST("/bookings/:id/cancel", h.CancelBooking)

		// Payments
		api.POST("/payments/webhook", h.GatewayWebhook)
	}

	router.GET("/health", func(c *ginext.Context) {
		c.JSON(http.StatusOK, ginext.H{"status": "ok"})
	})

	return router
}
