package helpers

import (
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// StringToNullableText converts string to nullable pgtype.Text
func StringToNullableText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// TimeToNullableTimestamptz converts time to nullable pgtype.Timestamptz
func TimeToNullableTimestamptz(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// Int32ToNullableInt4 converts int32 to nullable pgtype.Int4
func Int32ToNullableInt4(i int32) pgtype.Int4 {
	return pgtype.Int4{Int32: i, Valid: true}
}

// DateOf returns the UTC calendar date of t as pgtype.Date.
func DateOf(t time.Time) pgtype.Date {
	y, m, d := t.UTC().Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// UUIDToPg converts a uuid.UUID to pgtype.UUID. uuid.Nil maps to NULL.
func UUIDToPg(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

// PgToUUID converts pgtype.UUID back to uuid.UUID, returning uuid.Nil when NULL.
func PgToUUID(id pgtype.UUID) uuid.UUID {
	if !id.Valid {
		return uuid.Nil
	}
	return uuid.UUID(id.Bytes)
}

// BigIntToNumeric converts an integer amount in base units to pgtype.Numeric.
func BigIntToNumeric(v *big.Int) pgtype.Numeric {
	if v == nil {
		return pgtype.Numeric{Valid: false}
	}
	return pgtype.Numeric{Int: new(big.Int).Set(v), Exp: 0, Valid: true}
}

// DecimalToNumeric converts a decimal value to pgtype.Numeric.
func DecimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// NumericToDecimal converts pgtype.Numeric to decimal. NULL, NaN and infinities map to zero.
func NumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// NumericToBigInt converts pgtype.Numeric to an integer, truncating any fractional part.
func NumericToBigInt(n pgtype.Numeric) *big.Int {
	return NumericToDecimal(n).BigInt()
}
