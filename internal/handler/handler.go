package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/figoaljufrie/roomstay/internal/domain"
	"github.com/figoaljufrie/roomstay/internal/handler/dto"
	"github.com/figoaljufrie/roomstay/internal/service/ports"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
)

const dateLayout = "2006-01-02"

type PricingSvc interface {
	Quote(ctx context.Context, roomID string, checkIn, checkOut time.Time) (*domain.Quote, error)
}

type BookingSvc interface {
	Create(ctx context.Context, input domain.CreateBookingInput) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error)
	SubmitPaymentProof(ctx context.Context, bookingID, userID, proofRef string) error
	Confirm(ctx context.Context, bookingID string) error
	Reject(ctx context.Context, bookingID, reason string) error
	Cancel(ctx context.Context, bookingID, userID, reason string) error
	HandleGatewayCallback(ctx context.Context, paymentRef string, status ports.GatewayStatus) error
}

type InventorySvc interface {
	CreateRoom(ctx context.Context, input domain.CreateRoomInput) (*domain.Room, error)
	GetRoom(ctx context.Context, id string) (*domain.Room, error)
	SetAvailabilityOverride(ctx context.Context, roomID string, date time.Time, o domain.AvailabilityOverride) error
	CreatePeakSeason(ctx context.Context, input domain.CreatePeakSeasonInput) (*domain.PeakSeason, error)
	DeletePeakSeason(ctx context.Context, id string) error
	ListPeakSeasons(ctx context.Context, propertyID string) ([]*domain.PeakSeason, error)
}

type Handler struct {
	pricingService   PricingSvc
	bookingService   BookingSvc
	inventoryService InventorySvc
}

func NewHandler(pricingService PricingSvc, bookingService BookingSvc, inventoryService InventorySvc) *Handler {
	return &Handler{
		pricingService:   pricingService,
		bookingService:   bookingService,
		inventoryService: inventoryService,
	}
}

// Rooms

func (h *Handler) CreateRoom(c *ginext.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	room, err := h.inventoryService.CreateRoom(c.Request.Context(), domain.CreateRoomInput{
		PropertyID: req.PropertyID,
		Name:       req.Name,
		BasePrice:  domain.Money(req.BasePrice),
		TotalUnits: req.TotalUnits,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRoomResponse(room))
}

func (h *Handler) GetRoom(c *ginext.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid room id"})
		return
	}

	room, err := h.inventoryService.GetRoom(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRoomResponse(room))
}

func (h *Handler) QuoteRoom(c *ginext.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid room id"})
		return
	}

	checkIn, err := time.Parse(dateLayout, c.Query("check_in"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid check_in, expected YYYY-MM-DD"})
		return
	}
	checkOut, err := time.Parse(dateLayout, c.Query("check_out"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid check_out, expected YYYY-MM-DD"})
		return
	}

	quote, err := h.pricingService.Quote(c.Request.Context(), id, checkIn, checkOut)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToQuoteResponse(quote))
}

func (h *Handler) SetAvailabilityOverride(c *ginext.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid room id"})
		return
	}

	var req dto.AvailabilityOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid date, expected YYYY-MM-DD"})
		return
	}

	override := domain.AvailabilityOverride{
		IsAvailable: req.IsAvailable,
		Reason:      req.Reason,
	}
	if req.CustomPrice != nil {
		v := domain.Money(*req.CustomPrice)
		override.CustomPrice = &v
	}
	if req.PriceModifier != nil {
		v := domain.Money(*req.PriceModifier)
		override.PriceModifier = &v
	}

	if err := h.inventoryService.SetAvailabilityOverride(c.Request.Context(), id, date, override); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ginext.H{"status": "ok"})
}

// Peak seasons

func (h *Handler) CreateSeason(c *ginext.Context) {
	propertyID := c.Param("id")
	if _, err := uuid.Parse(propertyID); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid property id"})
		return
	}

	var req dto.CreateSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid start_date, expected YYYY-MM-DD"})
		return
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid end_date, expected YYYY-MM-DD"})
		return
	}

	season, err := h.inventoryService.CreatePeakSeason(c.Request.Context(), domain.CreatePeakSeasonInput{
		PropertyID:  propertyID,
		StartDate:   startDate,
		EndDate:     endDate,
		ChangeType:  domain.SeasonChangeType(req.ChangeType),
		ChangeValue: req.ChangeValue,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSeasonResponse(season))
}

func (h *Handler) ListSeasons(c *ginext.Context) {
	propertyID := c.Param("id")
	if _, err := uuid.Parse(propertyID); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid property id"})
		return
	}

	seasons, err := h.inventoryService.ListPeakSeasons(c.Request.Context(), propertyID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]dto.SeasonResponse, 0, len(seasons))
	for _, s := range seasons {
		resp = append(resp, dto.ToSeasonResponse(s))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteSeason(c *ginext.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid season id"})
		return
	}

	if err := h.inventoryService.DeletePeakSeason(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ginext.H{"status": "deleted"})
}

// Bookings

func (h *Handler) CreateBooking(c *ginext.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	input := domain.CreateBookingInput{
		UserID:        req.UserID,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	}
	for _, item := range req.Items {
		checkIn, err := time.Parse(dateLayout, item.CheckIn)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid check_in, expected YYYY-MM-DD"})
			return
		}
		checkOut, err := time.Parse(dateLayout, item.CheckOut)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid check_out, expected YYYY-MM-DD"})
			return
		}
		input.Items = append(input.Items, domain.CreateBookingItem{
			RoomID:   item.RoomID,
			CheckIn:  checkIn,
			CheckOut: checkOut,
			Units:    item.Units,
		})
	}

	booking, err := h.bookingService.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *Handler) GetBooking(c *ginext.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid booking id"})
		return
	}

	booking, err := h.bookingService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *Handler) ListBookings(c *ginext.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "user_id is required"})
		return
	}

	bookings, err := h.bookingService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, dto.ToBookingResponse(b))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SubmitPaymentProof(c *ginext.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid booking id"})
		return
	}

	var req dto.PaymentProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.bookingService.SubmitPaymentProof(c.Request.Context(), id, req.UserID, req.ProofRef); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ginext.H{"status": string(domain.BookingStatusWaitingConfirmation)})
}

func (h *Handler) ConfirmBooking(c *ginext.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid booking id"})
		return
	}

	if err := h.bookingService.Confirm(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ginext.H{"status": string(domain.BookingStatusConfirmed)})
}

func (h *Handler) RejectBooking(c *ginext.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid booking id"})
		return
	}

	var req dto.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.bookingService.Reject(c.Request.Context(), id, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ginext.H{"status": string(domain.BookingStatusCancelled)})
}

func (h *Handler) CancelBooking(c *ginext.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid booking id"})
		return
	}

	var req dto.CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.bookingService.Cancel(c.Request.Context(), id, req.UserID, req.Reason); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ginext.H{"status": string(domain.BookingStatusCancelled)})
}

// Payments

func (h *Handler) GatewayWebhook(c *ginext.Context) {
	var req dto.GatewayWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	status := ports.GatewayStatus(req.TransactionStatus)
	if err := h.bookingService.HandleGatewayCallback(c.Request.Context(), req.TransactionID, status); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ginext.H{"status": "ok"})
}

func (h *Handler) handleError(c *ginext.Context, err error) {
	c.Set("error", err.Error())

	var availErr *domain.AvailabilityError
	if errors.As(err, &availErr) {
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error:  err.Error(),
			Date:   availErr.Date.Format(dateLayout),
			Reason: availErr.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrRoomNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrSeasonNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrInsufficientAvailability),
		errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidPricing):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrNotOwner):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}
