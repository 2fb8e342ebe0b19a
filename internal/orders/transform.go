package orders

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"moving_ops/internal/models"
	"moving_ops/internal/status"
)

const (
	DefaultPreferredTime = "09:00:00"
	dateLayout           = "2006-01-02"
)

// Rooms accepts a room count sent either as a JSON number or a string.
type Rooms string

func (r *Rooms) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Rooms(s)
		return nil
	}
	*r = Rooms(data)
	return nil
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Float parses the leading number of the value, 0 when there is none.
func (r Rooms) Float() float64 {
	m := leadingFloat.FindString(strings.TrimSpace(string(r)))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

type Schedule struct {
	Date string `json:"date,omitempty"`
	Time string `json:"time,omitempty"`
}

// ServiceLine is the view of one order service line.
type ServiceLine struct {
	ID          uint     `json:"id,omitempty"`
	ServiceID   uint     `json:"serviceId"`
	ServiceName string   `json:"serviceName,omitempty"`
	CompanyID   *uint    `json:"companyId,omitempty"`
	CompanyName string   `json:"companyName,omitempty"`
	Status      string   `json:"status,omitempty"`
	StatusColor string   `json:"statusColor,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Offer       *Offer   `json:"offer,omitempty"`
}

type Offer struct {
	ID        uint      `json:"id"`
	CompanyID uint      `json:"companyId"`
	Price     *float64  `json:"price,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// View is the dashboard's order view-model.
type View struct {
	ID                    uint          `json:"id,omitempty"`
	Status                string        `json:"status,omitempty"`
	StatusColor           string        `json:"statusColor,omitempty"`
	ClientID              uint          `json:"clientId"`
	CustomerName          string        `json:"customerName,omitempty"`
	CustomerEmail         string        `json:"customerEmail,omitempty"`
	LocationID            uint          `json:"locationId"`
	DestinationLocationID *uint         `json:"destinationLocationId,omitempty"`
	Schedule              *Schedule     `json:"schedule,omitempty"`
	PreferredDate         string        `json:"preferred_date,omitempty"`
	PreferredTime         string        `json:"preferred_time,omitempty"`
	NumberOfRooms         Rooms         `json:"number_of_rooms,omitempty"`
	Notes                 string        `json:"notes,omitempty"`
	Images                []string      `json:"images,omitempty"`
	Services              []ServiceLine `json:"services,omitempty"`
	AssignedCompanyName   string        `json:"assignedCompanyName,omitempty"`
	TotalPrice            float64       `json:"totalPrice,omitempty"`
	CreatedAt             *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt             *time.Time    `json:"updatedAt,omitempty"`
}

// ServicePayload is one requested service line of an order payload.
type ServicePayload struct {
	ServiceID uint  `json:"service_id"`
	CompanyID *uint `json:"company_id,omitempty"`
}

// Payload is the body the backend accepts when creating or updating an order.
type Payload struct {
	ClientID              uint             `json:"client_id"`
	LocationID            uint             `json:"location_id"`
	DestinationLocationID *uint            `json:"destination_location_id,omitempty"`
	PreferredDate         string           `json:"preferred_date"`
	PreferredTime         string           `json:"preferred_time"`
	NumberOfRooms         float64          `json:"number_of_rooms"`
	Notes                 string           `json:"notes,omitempty"`
	Images                []string         `json:"images"`
	Status                string           `json:"status"`
	Services              []ServicePayload `json:"services"`
}

// ForBackend maps a view-model to the backend payload. Missing schedule
// fields default to today at 09:00:00, rooms to 0 and status to pending;
// UI statuses are reduced to their canonical value.
func ForBackend(v View, now time.Time) Payload {
	p := Payload{
		ClientID:              v.ClientID,
		LocationID:            v.LocationID,
		DestinationLocationID: v.DestinationLocationID,
		PreferredDate:         firstNonEmpty(scheduleDate(v.Schedule), v.PreferredDate, now.Format(dateLayout)),
		PreferredTime:         firstNonEmpty(scheduleTime(v.Schedule), v.PreferredTime, DefaultPreferredTime),
		NumberOfRooms:         v.NumberOfRooms.Float(),
		Notes:                 v.Notes,
		Images:                v.Images,
		Status:                string(status.Pending),
		Services:              make([]ServicePayload, 0, len(v.Services)),
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if v.Status != "" {
		p.Status = string(status.MapToBackend(v.Status))
	}
	for _, s := range v.Services {
		p.Services = append(p.Services, ServicePayload{ServiceID: s.ServiceID, CompanyID: s.CompanyID})
	}
	return p
}

// FromBackend maps a stored order, with its client and service lines
// preloaded, to the view-model.
func FromBackend(o models.Order) View {
	v := View{
		ID:                    o.ID,
		Status:                o.Status,
		StatusColor:           status.Color(o.Status),
		ClientID:              o.ClientID,
		LocationID:            o.LocationID,
		DestinationLocationID: o.DestinationLocationID,
		Schedule:              &Schedule{Date: o.PreferredDate, Time: o.PreferredTime},
		PreferredDate:         o.PreferredDate,
		PreferredTime:         o.PreferredTime,
		NumberOfRooms:         Rooms(strconv.FormatFloat(o.NumberOfRooms, 'f', -1, 64)),
		Notes:                 o.Notes,
		Images:                []string(o.Images),
		Services:              make([]ServiceLine, 0, len(o.OrderServices)),
	}
	if v.Images == nil {
		v.Images = []string{}
	}
	if !o.CreatedAt.IsZero() {
		created, updated := o.CreatedAt, o.UpdatedAt
		v.CreatedAt, v.UpdatedAt = &created, &updated
	}
	if o.Client != nil {
		v.CustomerName = o.Client.Name
		v.CustomerEmail = o.Client.Email
	}

	for _, svc := range o.OrderServices {
		line := ServiceLine{
			ID:          svc.ID,
			ServiceID:   svc.ServiceID,
			CompanyID:   svc.CompanyID,
			Status:      svc.Status,
			StatusColor: status.Color(svc.Status),
			Price:       svc.Price,
		}
		if svc.Service != nil {
			line.ServiceName = svc.Service.Name
		}
		if svc.Company != nil {
			line.CompanyName = svc.Company.Name
			if v.AssignedCompanyName == "" {
				v.AssignedCompanyName = svc.Company.Name
			}
		}
		if svc.Offer != nil {
			line.Offer = &Offer{
				ID:        svc.Offer.ID,
				CompanyID: svc.Offer.CompanyID,
				Price:     svc.Offer.Price,
				Notes:     svc.Offer.Notes,
				Status:    svc.Offer.Status,
				CreatedAt: svc.Offer.CreatedAt,
			}
		}
		if svc.Price != nil && status.MapToBackend(svc.Status) != status.Cancelled {
			v.TotalPrice += *svc.Price
		}
		v.Services = append(v.Services, line)
	}
	return v
}

func scheduleDate(s *Schedule) string {
	if s == nil {
		return ""
	}
	return s.Date
}

func scheduleTime(s *Schedule) string {
	if s == nil {
		return ""
	}
	return s.Time
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
