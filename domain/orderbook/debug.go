package orderbook

import "strconv"

// String renders the order for logs. It allocates; hot paths should
// use AppendTo with a reused buffer.
func (o *Order) String() string {
	return string(o.AppendTo(make([]byte, 0, 256)))
}

// AppendTo appends a human readable rendering of the order to dst.
// It does not allocate when dst has enough spare capacity.
func (o *Order) AppendTo(dst []byte) []byte {
	dst = append(dst, "Order [id="...)
	dst = strconv.AppendUint(dst, o.id, 10)
	dst = append(dst, ", clientId="...)
	dst = strconv.AppendUint(dst, o.clientID, 10)
	dst = append(dst, ", clientOrderId="...)
	dst = o.clientOrderID.appendTo(dst)
	dst = append(dst, ", side="...)
	dst = append(dst, o.side.String()...)
	dst = append(dst, ", security="...)
	dst = append(dst, o.security...)
	dst = append(dst, ", originalSize="...)
	dst = strconv.AppendInt(dst, o.originalSize, 10)
	dst = append(dst, ", openSize="...)
	dst = strconv.AppendInt(dst, o.OpenSize(), 10)
	dst = append(dst, ", executedSize="...)
	dst = strconv.AppendInt(dst, o.executedSize, 10)
	dst = append(dst, ", canceledSize="...)
	dst = strconv.AppendInt(dst, o.CanceledSize(), 10)

	if o.orderType != Market {
		dst = append(dst, ", price="...)
		dst = AppendPrice(dst, o.price)
	}

	dst = append(dst, ", type="...)
	dst = append(dst, o.orderType.String()...)

	if o.orderType != Market {
		dst = append(dst, ", tif="...)
		dst = append(dst, o.tif.String()...)
	}

	return append(dst, ']')
}

// AppendPrice renders a fixed point price as a decimal without
// trailing zeros, e.g. 10_150_000_000 -> "101.5".
func AppendPrice(dst []byte, price int64) []byte {
	if price < 0 {
		dst = append(dst, '-')
		price = -price
	}
	dst = strconv.AppendInt(dst, price/PriceScale, 10)

	frac := price % PriceScale
	if frac == 0 {
		return dst
	}

	var digits [8]byte
	for i := len(digits) - 1; i >= 0; i-- {
		digits[i] = byte('0' + frac%10)
		frac /= 10
	}
	n := len(digits)
	for n > 0 && digits[n-1] == '0' {
		n--
	}
	dst = append(dst, '.')
	return append(dst, digits[:n]...)
}
