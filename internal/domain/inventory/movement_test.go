package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockledger/backend/internal/domain/shared"
)

func createTestMovement(t *testing.T, movementType MovementType) *StockMovement {
	t.Helper()
	m, err := NewStockMovement(
		uuid.New(),
		FormatMovementNumber(movementType.DocumentPrefix(), time.Now(), 1),
		movementType,
		uuid.New(),
		uuid.New(),
		decimal.NewFromInt(10),
		decimal.NewFromFloat(5.5),
	)
	require.NoError(t, err)
	return m
}

func TestNewStockMovement(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	warehouseID := uuid.New()

	t.Run("creates movement with computed total cost", func(t *testing.T) {
		m, err := NewStockMovement(tenantID, "PUR20250101000001", MovementTypePurchase,
			productID, warehouseID, decimal.NewFromInt(10), decimal.NewFromFloat(2.5))

		require.NoError(t, err)
		assert.Equal(t, "PUR20250101000001", m.DocumentNumber)
		assert.Equal(t, decimal.NewFromInt(25).String(), m.TotalCost.String())
		assert.False(t, m.IsReversed)
	})

	t.Run("rejects empty document number", func(t *testing.T) {
		_, err := NewStockMovement(tenantID, "", MovementTypePurchase,
			productID, warehouseID, decimal.NewFromInt(10), decimal.Zero)

		require.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewStockMovement(tenantID, "PUR20250101000001", MovementTypePurchase,
			productID, warehouseID, decimal.Zero, decimal.Zero)

		require.Error(t, err)
	})

	t.Run("rejects negative unit cost", func(t *testing.T) {
		_, err := NewStockMovement(tenantID, "PUR20250101000001", MovementTypePurchase,
			productID, warehouseID, decimal.NewFromInt(1), decimal.NewFromInt(-1))

		require.Error(t, err)
	})

	t.Run("rejects unknown movement type", func(t *testing.T) {
		_, err := NewStockMovement(tenantID, "XXX20250101000001", MovementType("bogus"),
			productID, warehouseID, decimal.NewFromInt(1), decimal.Zero)

		require.Error(t, err)
	})
}

func TestStockMovement_MarkReversed(t *testing.T) {
	t.Run("marks exactly once", func(t *testing.T) {
		m := createTestMovement(t, MovementTypePurchase)
		reversalID := uuid.New()

		require.NoError(t, m.MarkReversed(reversalID))

		assert.True(t, m.IsReversed)
		require.NotNil(t, m.ReversedByMovementID)
		assert.Equal(t, reversalID, *m.ReversedByMovementID)
	})

	t.Run("second reversal fails with AlreadyReversed", func(t *testing.T) {
		m := createTestMovement(t, MovementTypeSales)
		require.NoError(t, m.MarkReversed(uuid.New()))

		err := m.MarkReversed(uuid.New())

		require.Error(t, err)
		assert.Equal(t, shared.ErrAlreadyReversed, err)
	})

	t.Run("rejects nil reversing movement ID", func(t *testing.T) {
		m := createTestMovement(t, MovementTypePurchase)

		require.Error(t, m.MarkReversed(uuid.Nil))
		assert.False(t, m.IsReversed)
	})
}

func TestStockMovement_SignedQuantity(t *testing.T) {
	incoming := createTestMovement(t, MovementTypePurchase)
	outgoing := createTestMovement(t, MovementTypeSales)

	assert.Equal(t, decimal.NewFromInt(10), incoming.SignedQuantity())
	assert.Equal(t, decimal.NewFromInt(-10), outgoing.SignedQuantity())
}

func TestMovementType_Direction(t *testing.T) {
	incoming := []MovementType{
		MovementTypePurchase, MovementTypeProduction, MovementTypeAdjustmentIncrease,
		MovementTypeOpening, MovementTypeFound, MovementTypeSalesReturn,
	}
	outgoing := []MovementType{
		MovementTypeSales, MovementTypeConsumption, MovementTypeAdjustmentDecrease,
		MovementTypeDamage, MovementTypeLoss, MovementTypePurchaseReturn,
	}

	for _, mt := range incoming {
		assert.True(t, mt.IsIncoming(), "expected %s to be incoming", mt)
	}
	for _, mt := range outgoing {
		assert.True(t, mt.IsOutgoing(), "expected %s to be outgoing", mt)
	}
	assert.Equal(t, 0, MovementTypeTransfer.Direction())
	assert.Equal(t, 0, MovementTypeCounting.Direction())
}

func TestMovementType_ReversalType(t *testing.T) {
	cases := map[MovementType]MovementType{
		MovementTypePurchase:           MovementTypePurchaseReturn,
		MovementTypePurchaseReturn:     MovementTypePurchase,
		MovementTypeSales:              MovementTypeSalesReturn,
		MovementTypeSalesReturn:        MovementTypeSales,
		MovementTypeAdjustmentIncrease: MovementTypeAdjustmentDecrease,
		MovementTypeAdjustmentDecrease: MovementTypeAdjustmentIncrease,
		MovementTypeDamage:             MovementTypeAdjustmentDecrease,
		MovementTypeTransfer:           MovementTypeAdjustmentDecrease,
	}

	for original, expected := range cases {
		assert.Equal(t, expected, original.ReversalType(), "reversal of %s", original)
	}
}

func TestMovementType_Totality(t *testing.T) {
	// Every defined type must have a prefix, a validity bit and a reversal
	// counterpart.
	for _, mt := range AllMovementTypes() {
		assert.True(t, mt.IsValid(), "%s should be valid", mt)
		assert.Len(t, mt.DocumentPrefix(), 3, "%s prefix", mt)
		assert.True(t, mt.ReversalType().IsValid(), "%s reversal", mt)
	}

	// Prefixes must be pairwise distinct so document numbers never collide
	// across types.
	seen := make(map[string]MovementType)
	for _, mt := range AllMovementTypes() {
		prefix := mt.DocumentPrefix()
		other, dup := seen[prefix]
		assert.False(t, dup, "prefix %s shared by %s and %s", prefix, mt, other)
		seen[prefix] = mt
	}
}

func TestMovementType_IsCostLayerSource(t *testing.T) {
	assert.True(t, MovementTypePurchase.IsCostLayerSource())
	assert.True(t, MovementTypeOpening.IsCostLayerSource())
	assert.True(t, MovementTypeProduction.IsCostLayerSource())
	assert.False(t, MovementTypeSales.IsCostLayerSource())
	assert.False(t, MovementTypeFound.IsCostLayerSource())
}

func TestFormatMovementNumber(t *testing.T) {
	date := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "PUR20250314000042", FormatMovementNumber("PUR", date, 42))
	assert.Equal(t, "SAL20250314123456", FormatMovementNumber("SAL", date, 123456))
}

func TestFormatReservationNumber(t *testing.T) {
	date := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "RSV-20250314-0007", FormatReservationNumber(date, 7))
	assert.Equal(t, "RSV-20250314-1234", FormatReservationNumber(date, 1234))
}
