package allocation

import "github.com/juliolopes-dev/LogiLink-sub001/pkg/domain/entities"

// NormalizeMultiple maps a configured sales multiple to a shipping step. Values of 1 or
// less disable rounding.
func NormalizeMultiple(multiple int) entities.Quantity {
	if multiple <= 1 {
		return 1
	}
	return entities.Quantity(multiple)
}

// FloorToMultiple rounds q down to the nearest multiple of step
func FloorToMultiple(q, step entities.Quantity) entities.Quantity {
	if step <= 1 || q <= 0 {
		if q < 0 {
			return 0
		}
		return q
	}
	return q / step * step
}
