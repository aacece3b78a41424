package sim

import "math/big"

// HitProportionSentinel is returned by hit-proportion metrics when there
// are no targets to compute a proportion over (§7e).
var HitProportionSentinel = DecimalSentinel

// SetMetrics holds the per-malicious-set aggregate ratios of §4.5,
// computed once at the end of a run.
type SetMetrics struct {
	UserCLR               Decimal
	VMCLR                 Decimal
	UnsafeSubVMCLR        Decimal
	SafeVMTimeProportion  Decimal
	UnsafeSubSafeVMTime   Decimal
	SafeSubTimeProportion Decimal
	Coverage              Decimal
}

// RunMetrics bundles the whole-run metrics, including the per-set
// breakdowns and core utilization.
type RunMetrics struct {
	CoreUtilization Decimal
	Sets            []SetMetrics
}

// ComputeMetrics traverses the engine's final entity state and computes
// every ratio in §4.5, one SetMetrics per configured malicious set.
func ComputeMetrics(eng *Engine) RunMetrics {
	return RunMetrics{
		CoreUtilization: computeCoreUtilization(eng),
		Sets:            computeSetMetrics(eng),
	}
}

func computeCoreUtilization(eng *Engine) Decimal {
	busy := new(big.Int)
	total := new(big.Int)
	for _, h := range eng.Hosts {
		b, t := h.LifetimeTicks(eng.Clock())
		busy.Add(busy, b)
		total.Add(total, t)
	}
	return RatioBigInt(busy, total, DecimalOne)
}

func computeSetMetrics(eng *Engine) []SetMetrics {
	n := eng.Config.NumMaliciousSets()
	out := make([]SetMetrics, n)
	for m := 0; m < n; m++ {
		out[m] = SetMetrics{
			UserCLR:               userCLR(eng, m),
			VMCLR:                 vmCLR(eng, m, false),
			UnsafeSubVMCLR:        vmCLR(eng, m, true),
			SafeVMTimeProportion:  safeVMTimeProportion(eng, m, false),
			UnsafeSubSafeVMTime:   safeVMTimeProportion(eng, m, true),
			SafeSubTimeProportion: safeSubTimeProportion(eng, m),
			Coverage:              coverage(eng, m),
		}
	}
	return out
}

// userCLR is the fraction of benign subscriptions in set m that were
// never exposed to a malicious-in-m subscription.
func userCLR(eng *Engine, m int) Decimal {
	benign := int64(0)
	exposed := int64(0)
	for _, s := range eng.Subs {
		if s.Malicious[m] {
			continue
		}
		benign++
		if s.ExposedToMaliciousSub[m] {
			exposed++
		}
	}
	return Ratio(benign-exposed, benign, DecimalOne)
}

// vmCLR is the fraction of benign VMs in set m that were never
// co-resident with a malicious-in-m VM. When unsafeSubsOnly is set, the
// population is further restricted to VMs whose subscription was
// exposed in set m.
func vmCLR(eng *Engine, m int, unsafeSubsOnly bool) Decimal {
	total := int64(0)
	colocated := int64(0)
	for _, v := range eng.VMs {
		if v.Sub.Malicious[m] {
			continue
		}
		if unsafeSubsOnly && !v.Sub.ExposedToMaliciousSub[m] {
			continue
		}
		total++
		if v.WasColocatedWithMalicious[m] {
			colocated++
		}
	}
	return Ratio(total-colocated, total, DecimalOne)
}

// safeVMTimeProportion computes, over benign VMs in set m (optionally
// restricted to those of exposed subscriptions), the fraction of total
// VM-lifetime that was NOT spent co-resident with a malicious-in-m VM on
// the VM's host.
func safeVMTimeProportion(eng *Engine, m int, unsafeSubsOnly bool) Decimal {
	var total, unsafeTime int64
	for _, v := range eng.VMs {
		if v.Sub.Malicious[m] {
			continue
		}
		if unsafeSubsOnly && !v.Sub.ExposedToMaliciousSub[m] {
			continue
		}
		total += v.Deleted - v.Created
		if v.FirstHost == nil {
			continue
		}
		for _, period := range v.FirstHost.MaliciousPeriods(m) {
			s, e := period.Start, period.End
			if s < v.Created {
				s = v.Created
			}
			if e > v.Deleted {
				e = v.Deleted
			}
			if e > s {
				unsafeTime += e - s
			}
		}
	}
	return Ratio(total-unsafeTime, total, DecimalOne)
}

// safeSubTimeProportion computes, for each benign subscription in set m,
// the union of VM-lifetime intervals ("active time") minus the union of
// malicious periods (from every host that ever hosted one of its VMs,
// clipped to that VM's own lifetime) as a fraction of active time, then
// averages that proportion over all benign subscriptions (one with no
// active time at all contributes the safe value of 1).
func safeSubTimeProportion(eng *Engine, m int) Decimal {
	sum := DecimalZero
	count := int64(0)
	for _, s := range eng.Subs {
		if s.Malicious[m] {
			continue
		}
		count++
		var active, unsafe intervalUnion
		for _, v := range s.TotalVMs {
			active.Insert(v.Created, v.Deleted)
			if v.FirstHost == nil {
				continue
			}
			for _, period := range v.FirstHost.MaliciousPeriods(m) {
				st, en := period.Start, period.End
				if st < v.Created {
					st = v.Created
				}
				if en > v.Deleted {
					en = v.Deleted
				}
				if en > st {
					unsafe.Insert(st, en)
				}
			}
		}
		sum = sum.Add(Ratio(active.Total()-unsafe.Total(), active.Total(), DecimalOne))
	}
	if count == 0 {
		return DecimalOne
	}
	return sum.DivRound(DecimalFromInt(count), RatioScale)
}

// coverage is the fraction of ever-active hosts that ever opened a
// malicious period in set m.
func coverage(eng *Engine, m int) Decimal {
	everActive := int64(0)
	withPeriod := int64(0)
	for _, h := range eng.Hosts {
		if !h.everBooted {
			continue
		}
		everActive++
		if h.HasMaliciousPeriod(m) {
			withPeriod++
		}
	}
	return Ratio(withPeriod, everActive, DecimalOne)
}
