package customers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/gasflow-backend/internal/address"
	"github.com/angelmondragon/gasflow-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gasflow-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, db *gorm.DB) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(db)
	svc, err := NewService(ServiceParams{
		Repo:        repo,
		Addresses:   address.NewRepository(db),
		PhoneRegion: "BR",
		Messages:    Messages{BusinessName: "Léo Gás", Location: time.UTC},
		Now:         func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return svc, repo
}

func TestServiceCreateNormalizesPhone(t *testing.T) {
	svc, _ := newTestService(t, dbtest.Open(t))

	dto, err := svc.Create(context.Background(), CustomerInput{Name: " Maria ", Phone: "(61) 99876-5432"})
	require.NoError(t, err)
	require.Equal(t, "Maria", dto.Name)
	require.Equal(t, "+5561998765432", dto.Phone)
	require.Contains(t, dto.PhoneDisplay, "99876")

	_, err = svc.Create(context.Background(), CustomerInput{Name: "Bad", Phone: "12"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(context.Background(), CustomerInput{Name: " "})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	noPhone, err := svc.Create(context.Background(), CustomerInput{Name: "Sem telefone"})
	require.NoError(t, err)
	require.Empty(t, noPhone.Phone)
	_, err = svc.WhatsAppLink(context.Background(), noPhone.ID, "oi")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	link, err := svc.WhatsAppLink(context.Background(), dto.ID, "")
	require.NoError(t, err)
	require.Equal(t, "https://wa.me/5561998765432?text=", link)
}

func TestServiceWithoutRecentPurchasesOrdering(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t, dbtest.Open(t))

	never, err := svc.Create(ctx, CustomerInput{Name: "Nunca comprou"})
	require.NoError(t, err)
	old, err := svc.Create(ctx, CustomerInput{Name: "Antigo"})
	require.NoError(t, err)
	older, err := svc.Create(ctx, CustomerInput{Name: "Mais antigo"})
	require.NoError(t, err)
	recent, err := svc.Create(ctx, CustomerInput{Name: "Recente"})
	require.NoError(t, err)

	require.NoError(t, repo.AppendPurchase(ctx, purchase(old.ID, uuid.New(), 0, testNow.AddDate(0, 0, -40))))
	require.NoError(t, repo.AppendPurchase(ctx, purchase(older.ID, uuid.New(), 0, testNow.AddDate(0, 0, -90))))
	require.NoError(t, repo.AppendPurchase(ctx, purchase(recent.ID, uuid.New(), 0, testNow.AddDate(0, 0, -2))))

	inactive, err := svc.WithoutRecentPurchases(ctx, 30)
	require.NoError(t, err)
	require.Len(t, inactive, 3)
	require.Equal(t, never.ID, inactive[0].ID)
	require.Equal(t, older.ID, inactive[1].ID)
	require.Equal(t, old.ID, inactive[2].ID)

	ranked, err := svc.WithoutRecentPurchases(ctx, 0)
	require.NoError(t, err)
	require.Len(t, ranked, 4)
	require.Equal(t, recent.ID, ranked[3].ID)
}

func TestServiceSummaryListsLatestThreePurchases(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	svc, repo := newTestService(t, db)

	customer, err := svc.Create(ctx, CustomerInput{Name: "Joana", Phone: "61 99876-5432"})
	require.NoError(t, err)
	addr := models.Address{ID: uuid.New(), Quadra: "104 Norte", Alameda: "01", Lote: "15", Casa: "A"}
	require.NoError(t, db.Create(&addr).Error)
	require.NoError(t, address.NewRepository(db).Link(ctx, customer.ID, addr.ID))

	for i := 0; i < 4; i++ {
		p := purchase(customer.ID, uuid.New(), 0, testNow.AddDate(0, 0, -i))
		p.ProductName = []string{"Gás P13", "Água 20L", "Registro", "Brinde"}[i]
		p.Value = decimal.RequireFromString("34.5")
		require.NoError(t, repo.AppendPurchase(ctx, p))
	}

	text, err := svc.Summary(ctx, customer.ID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(text, "📋 *Resumo do Cliente - Léo Gás*"))
	require.Contains(t, text, "1. Qd. 104 Norte, Al. 01, Lt. 15, Casa A")
	require.Contains(t, text, "1. Gás P13 (1x) - R$ 34,50 - 01/03/2025")
	require.Contains(t, text, "3. Registro")
	require.NotContains(t, text, "Brinde")

	_, err = svc.Summary(ctx, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestMessagesRegistration(t *testing.T) {
	msgs := Messages{BusinessName: "Léo Gás", Location: time.UTC}
	text := msgs.Registration(models.Customer{Name: "", CreatedAt: testNow, Notes: "portão azul"}, "", nil)
	require.Contains(t, text, "*Cliente:* Não informado")
	require.Contains(t, text, "*Data de Cadastro:* 01/03/2025")
	require.Contains(t, text, "*Observações:* portão azul")
	require.NotContains(t, text, "Endereço(s)")
}

func TestFormatBRL(t *testing.T) {
	require.Equal(t, "R$ 140,00", FormatBRL(decimal.NewFromInt(140)))
	require.Equal(t, "R$ 0,50", FormatBRL(decimal.RequireFromString("0.5")))
}
