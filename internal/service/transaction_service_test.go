package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DHFin/dhf-pay-back-private/internal/database"
	"github.com/DHFin/dhf-pay-back-private/internal/models"
	"github.com/DHFin/dhf-pay-back-private/internal/repository"
	"github.com/DHFin/dhf-pay-back-private/pkg/mempool"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (m *fakeMailer) SendTransactionCreated(to, storeName, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *fakeMailer) SendPaymentBill(to, billURL, storeName, comment string, amount decimal.Decimal) error {
	return m.SendTransactionCreated(to, storeName, "bill")
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func newFeeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/fees/recommended", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"fastestFee":20,"halfHourFee":10,"hourFee":5,"economyFee":2,"minimumFee":1}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

type testEnv struct {
	db           *gorm.DB
	svc          *TransactionService
	mailer       *fakeMailer
	transactions *repository.TransactionRepository
}

func newTestEnv(t *testing.T, feeBaseURL string) *testEnv {
	t.Helper()
	db, err := database.NewMemDB()
	require.NoError(t, err)

	mailer := &fakeMailer{}
	transactions := repository.NewTransactionRepository(db)
	svc := NewTransactionService(
		transactions,
		repository.NewPaymentRepository(db),
		repository.NewStoreRepository(db),
		repository.NewUserRepository(db),
		mempool.NewClient(feeBaseURL, 2*time.Second),
		mailer,
		zap.NewNop(),
	)
	return &testEnv{db: db, svc: svc, mailer: mailer, transactions: transactions}
}

func (e *testEnv) seedStore(t *testing.T, token string) *models.Store {
	t.Helper()
	user := &models.User{Name: "merchant", Email: token + "@example.com", Token: token, Role: models.RoleCustomer}
	require.NoError(t, e.db.Create(user).Error)
	store := &models.Store{
		UserID: user.ID,
		Name:   "Acme Shop",
		ApiKey: "key-" + token,
		Wallets: []models.StoreWallet{
			{Currency: models.CurrencyBitcoin, Value: "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"},
			{Currency: models.CurrencyDoge, Value: "DH5yaieqoZN36fDVciNyRueRGvGLR3mr7L"},
		},
	}
	require.NoError(t, e.db.Create(store).Error)
	return store
}

func (e *testEnv) seedPayment(t *testing.T, store *models.Store, mutate func(*models.Payment)) *models.Payment {
	t.Helper()
	p := &models.Payment{
		StoreID:  store.ID,
		Amount:   decimal.RequireFromString("0.01"),
		Currency: models.CurrencyBitcoin,
		Status:   models.PaymentStatusNotPaid,
		Datetime: time.Now(),
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func TestCreate(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-create")
	payment := env.seedPayment(t, store, nil)

	res, err := env.svc.Create(context.Background(), CreateTransactionInput{
		TxHash:    "abc123",
		PaymentID: payment.ID,
		Email:     "buyer@example.com",
		Sender:    "buyer",
	})
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusProcessing, res.Status)
	require.Equal(t, "0.01", res.Amount)
	require.Equal(t, "abc123", res.TxHash)
	require.Equal(t, payment.ID, res.Payment.ID)
	require.Equal(t, store.ID, res.Payment.Store.ID)
	require.Equal(t, 1, env.mailer.sentCount())

	stored, err := env.transactions.GetByTxHash("abc123")
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusProcessing, stored.Status)
	require.Equal(t, payment.ID, stored.PaymentID)
}

func TestCreateDuplicateTxHash(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-dup")
	payment := env.seedPayment(t, store, nil)

	in := CreateTransactionInput{TxHash: "dup-hash", PaymentID: payment.ID}
	_, err := env.svc.Create(context.Background(), in)
	require.NoError(t, err)

	_, err = env.svc.Create(context.Background(), in)
	require.ErrorIs(t, err, ErrDuplicateTransaction)

	n, err := env.transactions.CountByPaymentID(payment.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestCreateUniqueIndexClosesRace(t *testing.T) {
	// Bypass the existence pre-check and write two rows with the same
	// hash straight through the repository: the second write must fail
	// on the unique index, not silently succeed.
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-race")
	payment := env.seedPayment(t, store, nil)

	hash := "race-hash"
	first := &models.Transaction{TxHash: &hash, PaymentID: payment.ID, Amount: "0.01", Status: models.TransactionStatusProcessing, Updated: time.Now()}
	require.NoError(t, env.transactions.Create(first))

	hash2 := "race-hash"
	second := &models.Transaction{TxHash: &hash2, PaymentID: payment.ID, Amount: "0.01", Status: models.TransactionStatusProcessing, Updated: time.Now()}
	err := env.transactions.Create(second)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestCreatePaymentNotFound(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	_, err := env.svc.Create(context.Background(), CreateTransactionInput{TxHash: "nope", PaymentID: 9999})
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestCreatePaymentCancelled(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-cancel")
	payment := env.seedPayment(t, store, func(p *models.Payment) {
		p.Cancelled = true
	})

	_, err := env.svc.Create(context.Background(), CreateTransactionInput{TxHash: "h1", PaymentID: payment.ID})
	require.ErrorIs(t, err, ErrPaymentCancelled)

	_, err = env.svc.CreateWithWallet(context.Background(), payment.ID, "")
	require.ErrorIs(t, err, ErrPaymentCancelled)

	n, err := env.transactions.CountByPaymentID(payment.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestCreatePaymentCompleted(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-done")
	payment := env.seedPayment(t, store, func(p *models.Payment) {
		p.Type = nil
		p.Status = models.PaymentStatusPaid
	})

	_, err := env.svc.Create(context.Background(), CreateTransactionInput{TxHash: "h2", PaymentID: payment.ID})
	require.ErrorIs(t, err, ErrPaymentCompleted)
}

func TestCreateTypedPaidPaymentStillAcceptsTransactions(t *testing.T) {
	// Only type=null together with Paid is terminal; a typed Paid
	// payment may still receive transactions.
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-typed")
	typ := 1
	payment := env.seedPayment(t, store, func(p *models.Payment) {
		p.Type = &typ
		p.Status = models.PaymentStatusPaid
	})

	_, err := env.svc.Create(context.Background(), CreateTransactionInput{TxHash: "h3", PaymentID: payment.ID})
	require.NoError(t, err)
}

func TestCreateMailFailureDoesNotFailCreation(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	env.mailer.fail = true
	store := env.seedStore(t, "tok-mail")
	payment := env.seedPayment(t, store, nil)

	res, err := env.svc.Create(context.Background(), CreateTransactionInput{
		TxHash:    "mail-fail",
		PaymentID: payment.ID,
		Email:     "buyer@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusProcessing, res.Status)

	_, err = env.transactions.GetByTxHash("mail-fail")
	require.NoError(t, err)
}

func TestCreateWithWalletBitcoin(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-wallet")
	payment := env.seedPayment(t, store, nil)

	res, err := env.svc.CreateWithWallet(context.Background(), payment.ID, "buyer@example.com")
	require.NoError(t, err)
	require.Equal(t, models.TransactionStatusProcessing, res.Status)
	require.Equal(t, "0.01", res.Amount)
	require.NotEmpty(t, res.WalletForTransaction)
	require.Equal(t, "buyer@example.com", res.Sender)

	stored, err := env.transactions.GetByPaymentID(payment.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.WalletForTransaction)
	require.Equal(t, res.WalletForTransaction, stored.WalletForTransaction.PublicKey)
	// Private key is persisted but never echoed in the response.
	require.NotEmpty(t, stored.WalletForTransaction.PrivateKey)
	require.NotEqual(t, stored.WalletForTransaction.PrivateKey, res.WalletForTransaction)
	// Fee tiers at rate * 204: economy 2, hour 5, fastest 20 sat/vB.
	require.NotNil(t, stored.WalletForTransaction.EconomyFee)
	require.EqualValues(t, 2*204, *stored.WalletForTransaction.EconomyFee)
	require.EqualValues(t, 5*204, *stored.WalletForTransaction.AverageFee)
	require.EqualValues(t, 20*204, *stored.WalletForTransaction.FastestFee)
}

func TestCreateWithWalletDoge(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-doge")
	payment := env.seedPayment(t, store, func(p *models.Payment) {
		p.Currency = models.CurrencyDoge
	})

	res, err := env.svc.CreateWithWallet(context.Background(), payment.ID, "")
	require.NoError(t, err)
	require.NotEmpty(t, res.WalletForTransaction)
	require.Equal(t, byte('D'), res.WalletForTransaction[0])
}

func TestCreateWithWalletUnsupportedCurrency(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-eth")
	payment := env.seedPayment(t, store, func(p *models.Payment) {
		p.Currency = models.Currency("Ethereum")
	})

	_, err := env.svc.CreateWithWallet(context.Background(), payment.ID, "")
	require.ErrorIs(t, err, ErrUnsupportedCurrency)

	n, err := env.transactions.CountByPaymentID(payment.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestCreateWithWalletPaymentNotFound(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	_, err := env.svc.CreateWithWallet(context.Background(), 4242, "")
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestCreateWithWalletFeeOracleDown(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	}))
	defer broken.Close()

	env := newTestEnv(t, broken.URL)
	store := env.seedStore(t, "tok-nofees")
	payment := env.seedPayment(t, store, nil)

	res, err := env.svc.CreateWithWallet(context.Background(), payment.ID, "")
	require.NoError(t, err)
	require.NotEmpty(t, res.WalletForTransaction)

	stored, err := env.transactions.GetByPaymentID(payment.ID)
	require.NoError(t, err)
	require.Nil(t, stored.WalletForTransaction.EconomyFee)
	require.Nil(t, stored.WalletForTransaction.AverageFee)
	require.Nil(t, stored.WalletForTransaction.FastestFee)
}

func TestBtcCommission(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	com, err := env.svc.BtcCommission(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2*204, com.EconomyFee)
	require.EqualValues(t, 5*204, com.AverageFee)
	require.EqualValues(t, 20*204, com.FastestFee)
}

func TestBtcCommissionOracleDown(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusBadGateway)
	}))
	defer broken.Close()

	env := newTestEnv(t, broken.URL)
	_, err := env.svc.BtcCommission(context.Background())
	require.ErrorIs(t, err, ErrFeeOracleUnavailable)
}

func TestGetByTxHashOwnership(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-owner")
	payment := env.seedPayment(t, store, nil)

	_, err := env.svc.Create(context.Background(), CreateTransactionInput{TxHash: "owned", PaymentID: payment.ID})
	require.NoError(t, err)

	admin := &models.User{Email: "admin@example.com", Token: "tok-admin", Role: models.RoleAdmin}
	require.NoError(t, env.db.Create(admin).Error)
	stranger := &models.User{Email: "x@example.com", Token: "tok-stranger", Role: models.RoleCustomer}
	require.NoError(t, env.db.Create(stranger).Error)

	got, err := env.svc.GetByTxHash("owned", admin)
	require.NoError(t, err)
	require.Nil(t, got.Receiver)

	_, err = env.svc.GetByTxHash("owned", stranger)
	require.ErrorIs(t, err, ErrNoAccess)

	owner, err := repository.NewUserRepository(env.db).GetByToken("tok-owner")
	require.NoError(t, err)
	got, err = env.svc.GetByTxHash("owned", owner)
	require.NoError(t, err)
	require.NotNil(t, got.Receiver)
	require.Equal(t, models.CurrencyBitcoin, got.Receiver.Currency)

	_, err = env.svc.GetByTxHash("missing", admin)
	require.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestListForToken(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	storeA := env.seedStore(t, "tok-a")
	storeB := env.seedStore(t, "tok-b")
	paymentA := env.seedPayment(t, storeA, nil)
	paymentB := env.seedPayment(t, storeB, nil)

	_, err := env.svc.Create(context.Background(), CreateTransactionInput{TxHash: "a1", PaymentID: paymentA.ID})
	require.NoError(t, err)
	_, err = env.svc.Create(context.Background(), CreateTransactionInput{TxHash: "b1", PaymentID: paymentB.ID})
	require.NoError(t, err)

	admin := &models.User{Email: "root@example.com", Token: "tok-root", Role: models.RoleAdmin}
	require.NoError(t, env.db.Create(admin).Error)

	all, err := env.svc.ListForToken("tok-root")
	require.NoError(t, err)
	require.Len(t, all, 2)

	mine, err := env.svc.ListForToken(storeA.ApiKey)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, paymentA.ID, mine[0].PaymentID)
}

func TestLastForPayment(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-last")
	payment := env.seedPayment(t, store, nil)

	_, err := env.svc.LastForPayment(payment.ID)
	require.ErrorIs(t, err, ErrTransactionNotFound)

	_, err = env.svc.Create(context.Background(), CreateTransactionInput{TxHash: "first", PaymentID: payment.ID})
	require.NoError(t, err)

	last, err := env.svc.LastForPayment(payment.ID)
	require.NoError(t, err)
	require.Equal(t, "first", last.TxHash)
	require.Equal(t, models.TransactionStatusProcessing, last.Status)
}

func TestWalletTransactionForPayment(t *testing.T) {
	env := newTestEnv(t, newFeeServer(t).URL)
	store := env.seedStore(t, "tok-wbtc")
	payment := env.seedPayment(t, store, nil)

	created, err := env.svc.CreateWithWallet(context.Background(), payment.ID, "")
	require.NoError(t, err)

	got, err := env.svc.WalletTransactionForPayment(payment.ID)
	require.NoError(t, err)
	require.Equal(t, created.WalletForTransaction, got.WalletForTransaction)
	require.Equal(t, created.ID, got.ID)
}
