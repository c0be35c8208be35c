package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/printorder/internal/domain"
)

type ConfiguratorUC struct {
	Store   domain.KVStore
	Encoder domain.ImageEncoder
}

func (uc *ConfiguratorUC) Price(quantity int) int64 {
	return domain.LinePrice(quantity)
}

// BuildProduct snapshots a selection into a line item. Image encoding
// failures degrade to the placeholder; only a cancelled context aborts.
// A successfully encoded image also becomes the selection's preview, so a
// re-rendered configurator can show it without reading the upload again.
func (uc *ConfiguratorUC) BuildProduct(ctx context.Context, sel *domain.Selection) (domain.Product, error) {
	if sel == nil {
		return domain.Product{}, errors.New("selection nil")
	}
	image := domain.PlaceholderModel
	if sel.Asset != nil {
		if sel.HasImage() {
			enc, err := uc.encode(ctx, sel.Asset)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return domain.Product{}, ctxErr
				}
				log.Warn().Err(err).Str("file", sel.Asset.Name()).Msg("image encoding failed, using placeholder")
			} else {
				image = enc
				sel.Preview = enc
			}
		} else {
			image = domain.PlaceholderModelFile
		}
	}
	q := domain.NormalizeQuantity(sel.Quantity)
	return domain.Product{
		Name:     sel.DisplayName(),
		Image:    image,
		Material: sel.Material,
		Color:    sel.Color,
		Quantity: q,
		Price:    domain.LinePrice(q),
	}, nil
}

func (uc *ConfiguratorUC) encode(ctx context.Context, a domain.Asset) (string, error) {
	if uc.Encoder == nil {
		return "", errors.New("no image encoder configured")
	}
	return uc.Encoder.Encode(ctx, a)
}

// Cart reads the cart slot; a missing or unreadable cart is empty.
func (uc *ConfiguratorUC) Cart(ctx context.Context) []domain.Product {
	cart := []domain.Product{}
	raw, err := uc.Store.Get(ctx, domain.KeyCart)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Msg("read cart, treating as empty")
		}
		return cart
	}
	if err := json.Unmarshal([]byte(raw), &cart); err != nil || cart == nil {
		log.Warn().Err(err).Msg("unreadable cart, treating as empty")
		return []domain.Product{}
	}
	return cart
}

// AddToCart appends a snapshot to the cart and returns the new item count.
func (uc *ConfiguratorUC) AddToCart(ctx context.Context, sel *domain.Selection) (int, error) {
	p, err := uc.BuildProduct(ctx, sel)
	if err != nil {
		return 0, err
	}
	cart := append(uc.Cart(ctx), p)
	b, err := json.Marshal(cart)
	if err != nil {
		return 0, fmt.Errorf("encode cart: %w", err)
	}
	if err := uc.Store.Set(ctx, domain.KeyCart, string(b)); err != nil {
		return 0, fmt.Errorf("write cart: %w", err)
	}
	return len(cart), nil
}

// ProceedToPayment overwrites the checkout slot with a single-item record.
// The caller switches to the checkout view only when this returns nil.
func (uc *ConfiguratorUC) ProceedToPayment(ctx context.Context, sel *domain.Selection) (domain.CheckoutRecord, error) {
	p, err := uc.BuildProduct(ctx, sel)
	if err != nil {
		return domain.CheckoutRecord{}, err
	}
	rec := domain.NewCheckoutRecord(p)
	b, err := json.Marshal(rec)
	if err != nil {
		return domain.CheckoutRecord{}, fmt.Errorf("encode checkout: %w", err)
	}
	if err := uc.Store.Set(ctx, domain.KeyCheckout, string(b)); err != nil {
		return domain.CheckoutRecord{}, fmt.Errorf("write checkout: %w", err)
	}
	return rec, nil
}
