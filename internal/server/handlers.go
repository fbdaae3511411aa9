package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/parcelbridge/parcelbridge/pkg/shipping"
)

// ============================================================================
// Wire types
// ============================================================================

type addressDTO struct {
	Name         string `json:"name,omitempty"`
	Company      string `json:"company,omitempty"`
	Line1        string `json:"line1"`
	Line2        string `json:"line2,omitempty"`
	City         string `json:"city"`
	ProvinceCode string `json:"province_code,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	CountryCode  string `json:"country_code"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty"`
}

type shipmentDTO struct {
	CarrierID string `json:"carrier_id"`
	ServiceID string `json:"service_id"`
	PackageID string `json:"package_id,omitempty"`

	Length       float64 `json:"length"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	DistanceUnit string  `json:"distance_unit,omitempty"`
	Weight       float64 `json:"weight"`
	WeightUnit   string  `json:"weight_unit,omitempty"`

	LabelFormat      string `json:"label_format,omitempty"`
	LabelIDForReturn string `json:"label_id_for_return,omitempty"`

	From   *addressDTO `json:"from"`
	To     *addressDTO `json:"to"`
	Return *addressDTO `json:"return,omitempty"`
}

type labelDTO struct {
	ObjectID       string  `json:"object_id"`
	URL            string  `json:"url"`
	Format         string  `json:"format"`
	TrackingNumber string  `json:"tracking_number"`
	CarrierID      string  `json:"carrier_id"`
	CostAmount     float64 `json:"cost_amount"`
	CostCurrency   string  `json:"cost_currency"`
}

type historyItemDTO struct {
	Status   string      `json:"status"`
	Date     *time.Time  `json:"date,omitempty"`
	Details  string      `json:"details,omitempty"`
	Location *addressDTO `json:"location,omitempty"`
}

type trackInfoDTO struct {
	TrackingNumber string           `json:"tracking_number"`
	TrackingURL    string           `json:"tracking_url,omitempty"`
	CarrierID      string           `json:"carrier_id"`
	Status         string           `json:"status"`
	Date           *time.Time       `json:"date,omitempty"`
	Details        string           `json:"details,omitempty"`
	Location       *addressDTO      `json:"location,omitempty"`
	History        []historyItemDTO `json:"history,omitempty"`
}

type rateDTO struct {
	CarrierID     string   `json:"carrier_id"`
	ServiceID     string   `json:"service_id"`
	PackageID     string   `json:"package_id,omitempty"`
	CostAmount    *float64 `json:"cost_amount,omitempty"`
	CostCurrency  *string  `json:"cost_currency,omitempty"`
	IsAlternative bool     `json:"is_alternative"`
}

type serviceDTO struct {
	Name             string `json:"name"`
	PriceCategory    string `json:"price_category,omitempty"`
	IncludesSaturday bool   `json:"includes_saturday"`
	IncludesSunday   bool   `json:"includes_sunday"`
	Trackable        bool   `json:"trackable"`
	Insurable        bool   `json:"insurable"`
}

type packageDTO struct {
	Name         string  `json:"name"`
	Type         string  `json:"type,omitempty"`
	Length       float64 `json:"length,omitempty"`
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`
	DistanceUnit string  `json:"distance_unit,omitempty"`
	Weight       float64 `json:"weight,omitempty"`
	WeightUnit   string  `json:"weight_unit,omitempty"`
}

type carrierDTO struct {
	Type     string       `json:"type"`
	Name     string       `json:"name"`
	Services []serviceDTO `json:"services,omitempty"`
	Packages []packageDTO `json:"packages,omitempty"`
}

type errorDTO struct {
	Error     string `json:"error"`
	Provider  string `json:"provider,omitempty"`
	Operation string `json:"operation,omitempty"`
}

// ============================================================================
// Handlers
// ============================================================================

func (s *Server) handleCarriers(c echo.Context) error {
	sess, err := s.sessionFor(c.Request().Context(), c.Param("provider"))
	if err != nil {
		return s.writeError(c, err)
	}
	carriers, err := sess.Carriers(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"carriers": lo.Map(carriers, func(carrier *shipping.Carrier, _ int) carrierDTO {
			return carrierToDTO(carrier)
		}),
	})
}

func (s *Server) handleCreateLabel(c echo.Context) error {
	var req shipmentDTO
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := s.sessionFor(c.Request().Context(), c.Param("provider"))
	if err != nil {
		return s.writeError(c, err)
	}
	label, err := sess.CreateLabel(c.Request().Context(), shipmentFromDTO(&req))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusCreated, labelDTO{
		ObjectID:       label.ObjectID,
		URL:            label.URL,
		Format:         string(label.Format),
		TrackingNumber: label.TrackingNumber,
		CarrierID:      label.CarrierID,
		CostAmount:     label.Cost.Amount,
		CostCurrency:   label.Cost.Currency,
	})
}

func (s *Server) handleTrackShipment(c echo.Context) error {
	sess, err := s.sessionFor(c.Request().Context(), c.Param("provider"))
	if err != nil {
		return s.writeError(c, err)
	}
	info, err := sess.TrackShipment(c.Request().Context(), c.Param("carrier"), c.Param("number"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, trackInfoToDTO(info))
}

func (s *Server) handleTrackingURL(c echo.Context) error {
	sess, err := s.sessionFor(c.Request().Context(), c.Param("provider"))
	if err != nil {
		return s.writeError(c, err)
	}
	url, err := sess.TrackingURL(c.Request().Context(), c.Param("carrier"), c.Param("number"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"tracking_url": url})
}

func (s *Server) handleValidateAddress(c echo.Context) error {
	var req addressDTO
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := s.sessionFor(c.Request().Context(), c.Param("provider"))
	if err != nil {
		return s.writeError(c, err)
	}
	validated, err := sess.ValidateAddress(c.Request().Context(), addressFromDTO(&req))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, addressToDTO(validated))
}

func (s *Server) handleEstimateCost(c echo.Context) error {
	var req shipmentDTO
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := s.sessionFor(c.Request().Context(), c.Param("provider"))
	if err != nil {
		return s.writeError(c, err)
	}
	rate, err := sess.EstimateShippingCost(c.Request().Context(), shipmentFromDTO(&req))
	if err != nil {
		return s.writeError(c, err)
	}

	dto := rateDTO{
		CarrierID:     rate.CarrierID,
		ServiceID:     rate.ServiceID,
		PackageID:     rate.PackageID,
		IsAlternative: rate.IsAlternative,
	}
	if rate.Cost != nil {
		dto.CostAmount = &rate.Cost.Amount
		dto.CostCurrency = &rate.Cost.Currency
	}
	return c.JSON(http.StatusOK, dto)
}

// writeError maps domain errors onto HTTP statuses.
func (s *Server) writeError(c echo.Context, err error) error {
	s.logger.Warn("Request failed",
		zap.String("path", c.Path()),
		zap.Error(err))

	var unsupported *shipping.UnsupportedOperationError
	if errors.As(err, &unsupported) {
		return c.JSON(http.StatusNotImplemented, errorDTO{
			Error:     unsupported.Error(),
			Provider:  unsupported.Provider,
			Operation: string(unsupported.Operation),
		})
	}

	var validation *shipping.AddressValidationError
	if errors.As(err, &validation) {
		return c.JSON(http.StatusUnprocessableEntity, errorDTO{Error: validation.Error()})
	}

	if errors.Is(err, shipping.ErrProviderNotFound) {
		return c.JSON(http.StatusNotFound, errorDTO{Error: err.Error()})
	}

	var provider *shipping.ShippingError
	if errors.As(err, &provider) {
		return c.JSON(http.StatusBadGateway, errorDTO{
			Error:     provider.Error(),
			Provider:  provider.Provider,
			Operation: string(provider.Operation),
		})
	}

	return c.JSON(http.StatusInternalServerError, errorDTO{Error: err.Error()})
}

// ============================================================================
// Conversions
// ============================================================================

func addressFromDTO(dto *addressDTO) *shipping.Address {
	if dto == nil {
		return nil
	}
	return &shipping.Address{
		Name:         dto.Name,
		Company:      dto.Company,
		Line1:        dto.Line1,
		Line2:        dto.Line2,
		City:         dto.City,
		ProvinceCode: dto.ProvinceCode,
		PostalCode:   dto.PostalCode,
		CountryCode:  dto.CountryCode,
		Phone:        dto.Phone,
		Email:        dto.Email,
	}
}

func addressToDTO(addr *shipping.Address) *addressDTO {
	if addr == nil {
		return nil
	}
	return &addressDTO{
		Name:         addr.Name,
		Company:      addr.Company,
		Line1:        addr.Line1,
		Line2:        addr.Line2,
		City:         addr.City,
		ProvinceCode: addr.ProvinceCode,
		PostalCode:   addr.PostalCode,
		CountryCode:  addr.CountryCode,
		Phone:        addr.Phone,
		Email:        addr.Email,
	}
}

func shipmentFromDTO(dto *shipmentDTO) *shipping.Shipment {
	return &shipping.Shipment{
		CarrierID:        dto.CarrierID,
		ServiceID:        dto.ServiceID,
		PackageID:        dto.PackageID,
		Length:           dto.Length,
		Width:            dto.Width,
		Height:           dto.Height,
		DistanceUnit:     shipping.DistanceUnit(dto.DistanceUnit),
		Weight:           dto.Weight,
		WeightUnit:       shipping.WeightUnit(dto.WeightUnit),
		LabelFormat:      shipping.LabelFormat(dto.LabelFormat),
		LabelIDForReturn: dto.LabelIDForReturn,
		From:             addressFromDTO(dto.From),
		To:               addressFromDTO(dto.To),
		Return:           addressFromDTO(dto.Return),
	}
}

func trackInfoToDTO(info *shipping.TrackInfo) trackInfoDTO {
	dto := trackInfoDTO{
		TrackingNumber: info.TrackingNumber,
		TrackingURL:    info.TrackingURL,
		CarrierID:      info.CarrierID,
		Status:         string(info.Status),
		Details:        info.Details,
		Location:       addressToDTO(info.Location),
	}
	if !info.Date.IsZero() {
		d := info.Date
		dto.Date = &d
	}
	dto.History = lo.Map(info.History, func(item shipping.HistoryItem, _ int) historyItemDTO {
		h := historyItemDTO{
			Status:   string(item.Status),
			Details:  item.Details,
			Location: addressToDTO(item.Location),
		}
		if !item.Date.IsZero() {
			d := item.Date
			h.Date = &d
		}
		return h
	})
	return dto
}

func carrierToDTO(carrier *shipping.Carrier) carrierDTO {
	return carrierDTO{
		Type: string(carrier.Type),
		Name: carrier.Name,
		Services: lo.Map(carrier.Services(), func(svc *shipping.CarrierService, _ int) serviceDTO {
			return serviceDTO{
				Name:             svc.Name,
				PriceCategory:    string(svc.PriceCategory),
				IncludesSaturday: svc.IncludesSaturday,
				IncludesSunday:   svc.IncludesSunday,
				Trackable:        svc.Trackable,
				Insurable:        svc.Insurable,
			}
		}),
		Packages: lo.Map(carrier.Packages(), func(pkg *shipping.CarrierPackage, _ int) packageDTO {
			return packageDTO{
				Name:         pkg.Name,
				Type:         string(pkg.Type),
				Length:       pkg.Length,
				Width:        pkg.Width,
				Height:       pkg.Height,
				DistanceUnit: string(pkg.DistanceUnit),
				Weight:       pkg.Weight,
				WeightUnit:   string(pkg.WeightUnit),
			}
		}),
	}
}
