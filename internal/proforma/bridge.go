package proforma

// StepKind classifies an EPS bridge step.
type StepKind string

const (
	StepAbsolute StepKind = "absolute"
	StepRelative StepKind = "relative"
	StepTotal    StepKind = "total"
)

// BridgeStep is one bar of the acquirer-to-pro-forma EPS walk.
type BridgeStep struct {
	Label string   `json:"label"`
	Value float64  `json:"value"`
	Kind  StepKind `json:"kind"`
}

// buildBridge walks from acquirer standalone EPS to pro forma EPS. The
// absolute step plus every relative step equals the total step.
func buildBridge(res *Result, acqEPS, tax float64) []BridgeStep {
	pfShares := res.ProForma.Shares
	acqNI := res.AcquirerStandalone.NetIncome
	acqShares := res.AcquirerStandalone.Shares

	steps := []BridgeStep{
		{Label: "Acquirer EPS", Value: acqEPS, Kind: StepAbsolute},
		{Label: "Target Earnings", Value: res.TargetStandalone.NetIncome / pfShares, Kind: StepRelative},
		{Label: "Synergies", Value: res.Synergies.AfterTax(tax) / pfShares, Kind: StepRelative},
		{Label: "New Interest", Value: -res.IncrementalInterest * (1 - tax) / pfShares, Kind: StepRelative},
	}
	if res.Terms.NewSharesIssued > 0 {
		dilution := acqNI/acqShares - acqNI/pfShares
		steps = append(steps, BridgeStep{Label: "Share Dilution", Value: -dilution, Kind: StepRelative})
	}
	steps = append(steps, BridgeStep{Label: "Pro Forma EPS", Value: *res.ProForma.EPS, Kind: StepTotal})
	return steps
}

// BridgeSum adds the absolute step and all relative steps.
func BridgeSum(steps []BridgeStep) float64 {
	var total float64
	for _, s := range steps {
		if s.Kind != StepTotal {
			total += s.Value
		}
	}
	return total
}
