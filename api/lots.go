package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrsteele09/go-bidagri-client/lot"
)

// LotStatusPending is the status a freshly submitted lot carries
const LotStatusPending = "PENDING"

type (
	// LotProduct is one product line of a submitted lot
	LotProduct struct {
		Product  idRef `json:"productDTO"`
		Quantity int   `json:"quantity"`
	}

	// Lot is the body of POST /lots
	Lot struct {
		ID       int64        `json:"id,omitempty"`
		Status   string       `json:"status"`
		Farmer   idRef        `json:"farmerDTO"`
		Products []LotProduct `json:"lotProducts"`
	}
)

// NewLot builds a submission for farmerID from staged lot entries
func NewLot(farmerID int64, entries []lot.Entry) Lot {
	submission := Lot{
		Status:   LotStatusPending,
		Farmer:   idRef{ID: farmerID},
		Products: make([]LotProduct, 0, len(entries)),
	}
	for _, e := range entries {
		submission.Products = append(submission.Products, LotProduct{
			Product:  idRef{ID: e.Product.ID},
			Quantity: e.Quantity,
		})
	}
	return submission
}

// SaveLot submits a lot and returns the lots the backend reports back
func (c *Client) SaveLot(ctx context.Context, submission Lot) ([]Lot, error) {
	if len(submission.Products) == 0 {
		return nil, errors.New("lot has no products")
	}

	envelope, err := call[[]Lot](ctx, c, http.MethodPost, "/lots", authRequired, submission)
	if err != nil {
		return nil, err
	}
	if err := envelope.Err(); err != nil {
		return nil, err
	}
	saved, _ := envelope.Data()
	return saved, nil
}
