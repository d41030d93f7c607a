package grpcserver

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/protobuf/types/known/structpb"

	"ordercore/domain/command"
	"ordercore/domain/orderbook"
	"ordercore/service"
)

var priceScale = decimal.New(orderbook.PriceScale, 0)

// enum is satisfied by the orderbook enumerations.
type enum interface {
	~uint8
	String() string
}

// parseEnum maps name to the value of T whose String matches it. An
// unknown name yields an out-of-range value so the service rejects it.
func parseEnum[T enum](name string, def T) T {
	if name == "" {
		return def
	}
	name = strings.ToUpper(name)
	for v := T(0); v < T(0xff); v++ {
		s := v.String()
		if s == "UNKNOWN" {
			break
		}
		if s == name {
			return v
		}
	}
	return T(0xff)
}

// ParsePrice converts a decimal string to price units. Empty means 0.
func ParsePrice(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("price %q: %w", s, err)
	}
	scaled := d.Mul(priceScale)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("price %q: finer than %d decimal places", s, 8)
	}
	return scaled.IntPart(), nil
}

func FormatPrice(p int64) string {
	return decimal.New(p, -8).String()
}

func fields(in *structpb.Struct) map[string]*structpb.Value {
	if in == nil {
		return nil
	}
	return in.GetFields()
}

func str(f map[string]*structpb.Value, key string) string {
	return f[key].GetStringValue()
}

func num(f map[string]*structpb.Value, key string) int64 {
	return int64(f[key].GetNumberValue())
}

func toPlace(in *structpb.Struct) (command.Place, error) {
	f := fields(in)
	price, err := ParsePrice(str(f, "price"))
	if err != nil {
		return command.Place{}, err
	}
	clOrdID := str(f, "client_order_id")
	if clOrdID == "" {
		clOrdID = uuid.NewString()
	}
	return command.Place{
		OrderID:       uint64(num(f, "order_id")),
		ClientID:      uint64(num(f, "client_id")),
		ClientOrderID: clOrdID,
		Security:      str(f, "security"),
		Side:          parseEnum(str(f, "side"), orderbook.Side(0xff)),
		Type:          parseEnum(str(f, "type"), orderbook.Limit),
		TimeInForce:   parseEnum(str(f, "tif"), orderbook.GTC),
		Price:         price,
		Size:          num(f, "size"),
	}, nil
}

func toCancel(in *structpb.Struct) command.Cancel {
	f := fields(in)
	return command.Cancel{
		OrderID: uint64(num(f, "order_id")),
		Size:    num(f, "size"),
		Reason:  parseEnum(str(f, "reason"), orderbook.CancelReasonUser),
	}
}

func toReduce(in *structpb.Struct) command.Reduce {
	f := fields(in)
	return command.Reduce{
		OrderID:      uint64(num(f, "order_id")),
		NewTotalSize: num(f, "new_total_size"),
	}
}

func toExecute(in *structpb.Struct) (command.Execute, error) {
	f := fields(in)
	price, err := ParsePrice(str(f, "price"))
	if err != nil {
		return command.Execute{}, err
	}
	return command.Execute{
		OrderID:     uint64(num(f, "order_id")),
		Side:        parseEnum(str(f, "side"), orderbook.ExecuteSideMaker),
		Size:        num(f, "size"),
		Price:       price,
		ExecutionID: num(f, "execution_id"),
		MatchID:     num(f, "match_id"),
	}, nil
}

// fromView renders v as a Struct.
func fromView(v service.View) *structpb.Struct {
	f := map[string]*structpb.Value{
		"order_id":        structpb.NewNumberValue(float64(v.ID)),
		"client_id":       structpb.NewNumberValue(float64(v.ClientID)),
		"client_order_id": structpb.NewStringValue(v.ClientOrderID),
		"security":        structpb.NewStringValue(v.Security),
		"side":            structpb.NewStringValue(v.Side.String()),
		"type":            structpb.NewStringValue(v.Type.String()),
		"tif":             structpb.NewStringValue(v.TimeInForce.String()),
		"price":           structpb.NewStringValue(FormatPrice(v.Price)),
		"original_size":   structpb.NewNumberValue(float64(v.OriginalSize)),
		"total_size":      structpb.NewNumberValue(float64(v.TotalSize)),
		"executed_size":   structpb.NewNumberValue(float64(v.ExecutedSize)),
		"open_size":       structpb.NewNumberValue(float64(v.OpenSize)),
		"canceled_size":   structpb.NewNumberValue(float64(v.CanceledSize)),
		"resting":         structpb.NewBoolValue(v.Resting),
		"terminated":      structpb.NewBoolValue(v.Terminated),
		"pending_cancel":  structpb.NewBoolValue(v.PendingCancel),
		"pending_size":    structpb.NewNumberValue(float64(v.PendingSize)),
		"debug":           structpb.NewStringValue(v.Debug),
	}
	if v.Rejected {
		f["reject_reason"] = structpb.NewStringValue(v.RejectReason.String())
	}
	return &structpb.Struct{Fields: f}
}
