// Package checkout drives order and contact submissions against the
// backend. It projects the current cart into an order payload and
// pre-validates contact fields so local failures come back in the same
// field/message shape the backend reports.
package checkout

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/prianik/storefront/internal/cart"
	"github.com/prianik/storefront/pkg/logger"
	"github.com/prianik/storefront/pkg/types"
)

// OrderAPI narrows the API client to the write operations checkout needs.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req types.OrderRequest) types.Envelope[types.OrderReceipt]
	SubmitContact(ctx context.Context, req types.ContactRequest) types.Envelope[types.ContactReceipt]
}

// ContactInfo is the shopper-supplied part of an order.
type ContactInfo struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required"`
	Comment        string `json:"comment"`
	Language       string `json:"language" validate:"required,oneof=en es ru"`
	RecaptchaToken string `json:"recaptchaResponse" validate:"required"`
}

// ContactMessage is a standalone contact-form submission.
type ContactMessage struct {
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required"`
	Language       string `json:"language" validate:"required,oneof=en es ru"`
	Message        string `json:"message" validate:"required"`
	RecaptchaToken string `json:"recaptchaResponse" validate:"required"`
}

// Service composes the cart ledger and the API client's write surface.
type Service struct {
	api      OrderAPI
	ledger   *cart.Ledger
	log      *logger.Logger
	validate *validator.Validate
}

func NewService(api OrderAPI, ledger *cart.Ledger, logg *logger.Logger) (*Service, error) {
	if api == nil {
		return nil, fmt.Errorf("order api required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("cart ledger required")
	}
	return &Service{
		api:      api,
		ledger:   ledger,
		log:      logg,
		validate: newValidator(),
	}, nil
}

// SubmitOrder projects the cart into an order and submits it. The cart
// is left untouched on failure AND on success: clearing after a
// successful order is the caller's move, so the write and the clear
// stay independently observable.
func (s *Service) SubmitOrder(ctx context.Context, info ContactInfo) types.Envelope[types.OrderReceipt] {
	lines := s.ledger.Lines()
	if len(lines) == 0 {
		return types.Fail[types.OrderReceipt]("cart is empty")
	}

	if fields := s.fieldErrors(info); len(fields) > 0 {
		return types.Invalid[types.OrderReceipt]("validation failed", fields)
	}

	items := make([]types.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, types.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		})
	}

	if s.log != nil {
		ctx = s.log.WithFields(ctx, map[string]any{
			"order_ref":  uuid.NewString(),
			"item_lines": len(items),
		})
		s.log.Info(ctx, "submitting order")
	}

	resp := s.api.CreateOrder(ctx, types.OrderRequest{
		Name:              info.Name,
		Email:             info.Email,
		Phone:             info.Phone,
		Comment:           info.Comment,
		Items:             items,
		Language:          info.Language,
		RecaptchaResponse: info.RecaptchaToken,
	})

	if s.log != nil {
		if resp.Success {
			s.log.Info(s.log.WithField(ctx, "order_id", resp.Data.OrderID), "order accepted")
		} else {
			s.log.Warn(s.log.WithField(ctx, "error", resp.Error), "order rejected")
		}
	}
	return resp
}

// SubmitContact validates and sends a contact-form message.
func (s *Service) SubmitContact(ctx context.Context, msg ContactMessage) types.Envelope[types.ContactReceipt] {
	if fields := s.fieldErrors(msg); len(fields) > 0 {
		return types.Invalid[types.ContactReceipt]("validation failed", fields)
	}

	return s.api.SubmitContact(ctx, types.ContactRequest{
		Name:              msg.Name,
		Email:             msg.Email,
		Phone:             msg.Phone,
		Language:          msg.Language,
		Message:           msg.Message,
		RecaptchaResponse: msg.RecaptchaToken,
	})
}

func (s *Service) fieldErrors(payload any) []types.FieldError {
	err := s.validate.Struct(payload)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []types.FieldError{{Field: "payload", Message: "is invalid"}}
	}
	fields := make([]types.FieldError, 0, len(errs))
	for _, fieldErr := range errs {
		fields = append(fields, types.FieldError{
			Field:   fieldErr.Field(),
			Message: validationMessage(fieldErr),
		})
	}
	return fields
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	}
	return "is invalid"
}
