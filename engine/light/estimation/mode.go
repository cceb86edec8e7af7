package estimation

import "github.com/Carmen-Shannon/oxy-ar/engine/ar"

// modeOf resolves the estimation mode for one Update call. Estimation is disabled when the
// estimator is switched off, there is no session, the session has no lighting estimation
// configured, or the configured mode is not one this package understands.
func modeOf(enabled bool, session ar.Session) ar.LightEstimationMode {
	if !enabled || session == nil || !session.IsConfiguredForLightEstimation() {
		return ar.LightEstimationModeDisabled
	}
	switch m := session.Config().LightEstimationMode; m {
	case ar.LightEstimationModeAmbientIntensity, ar.LightEstimationModeEnvironmentalHDR:
		return m
	default:
		return ar.LightEstimationModeDisabled
	}
}
