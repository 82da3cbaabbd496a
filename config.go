// SPDX-License-Identifier: GPL-3.0
// Copyright 2026 rocecc contributors

package rocecc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every parameter the CC core recognizes. It is loaded once
// at process startup and treated as read-only thereafter; algorithms
// receive it through the QP they're attached to.
type Config struct {
	MinRate  Bitrate `yaml:"min_rate"`
	LineRate Bitrate `yaml:"line_rate"` // NIC ceiling; every QP's max_rate
	MTU      Bytes   `yaml:"mtu"`
	CCMode   CCMode  `yaml:"cc_mode"`

	NackInterval    Clock `yaml:"nack_interval"`
	L2Chunk         Bytes `yaml:"l2_chunk"`
	L2AckInterval   Bytes `yaml:"l2_ack_interval"`
	L2BackToZero    bool  `yaml:"l2_back_to_zero"`

	EwmaGain        float64 `yaml:"ewma_gain"`
	RateOnFirstCnp  float64 `yaml:"rate_on_first_cnp"`
	ClampTargetRate bool    `yaml:"clamp_target_rate"`

	RpTimer              Clock `yaml:"rp_timer"`
	RateDecreaseInterval Clock `yaml:"rate_decrease_interval"`
	FastRecoveryTimes    int   `yaml:"fast_recovery_times"`
	AlphaResumeInterval  Clock `yaml:"alpha_resume_interval"`
	Rai                  Bitrate `yaml:"rai"`
	Rhai                 Bitrate `yaml:"rhai"`

	VarWin         bool `yaml:"var_win"`
	FastReact      bool `yaml:"fast_react"`
	MiThresh       int  `yaml:"mi_thresh"`
	TargetUtil     float64 `yaml:"target_util"`
	UtilHigh       float64 `yaml:"util_high"`
	RateBound      bool `yaml:"rate_bound"`
	MultiRate      bool `yaml:"multi_rate"`
	SampleFeedback bool `yaml:"sample_feedback"`

	Timely        TimelyConfig        `yaml:"timely"`
	PatchedTimely PatchedTimelyConfig `yaml:"patched_timely"`
	DctcpRai      Bitrate             `yaml:"dctcp_rai"`
	PintSmplThresh int                `yaml:"pint_smpl_thresh"`
	PintLogBase    float64            `yaml:"pint_log_base"`
	Swift         SwiftConfig         `yaml:"swift"`
	RttQcn        RttQcnConfig        `yaml:"rtt_qcn"`
	PowerQcn      PowerQcnConfig      `yaml:"power_qcn"`
	Ufcc          UfccConfig          `yaml:"ufcc"`

	// PowerTCPEnabled and PowerTCPDelay select PowerTCP / θ-PowerTCP
	// variants of CCMode Hpcc; an implementer must treat (CCMode,
	// PowerTCPEnabled, PowerTCPDelay) together as the true selector,
	// since PowerTCP shares HPCC's numeric mode value.
	PowerTCPEnabled bool `yaml:"power_tcp_enabled"`
	PowerTCPDelay   bool `yaml:"power_tcp_delay"`
}

// TimelyConfig holds TIMELY's delay-based gradient parameters.
type TimelyConfig struct {
	Alpha  float64 `yaml:"alpha"`
	Beta   float64 `yaml:"beta"`
	TLow   Clock   `yaml:"t_low"`
	THigh  Clock   `yaml:"t_high"`
	MinRtt Clock   `yaml:"min_rtt"`
}

// PatchedTimelyConfig holds the additional parameters the patched TIMELY
// variant blends with its base TimelyConfig.
type PatchedTimelyConfig struct {
	RTTRef Clock   `yaml:"rtt_ref"`
	Beta   float64 `yaml:"beta"`
}

// SwiftConfig holds Swift's fabric/endpoint congestion window parameters.
type SwiftConfig struct {
	Ai         float64 `yaml:"ai"`
	Beta       float64 `yaml:"beta"`
	MaxMdf     float64 `yaml:"max_mdf"`
	BaseTarget Clock   `yaml:"base_target"`
	HopScale   Clock   `yaml:"hop_scale"`
	FsMinCwnd  float64 `yaml:"fs_min_cwnd"`
	FsMaxCwnd  float64 `yaml:"fs_max_cwnd"`
	FsRange    Clock   `yaml:"fs_range"`
	MinCwnd    float64 `yaml:"swift_min_cwnd"`
	MaxCwnd    float64 `yaml:"swift_max_cwnd"`
}

// RttQcnConfig holds RTT-QCN's probabilistic-marking thresholds.
type RttQcnConfig struct {
	TMin  Clock   `yaml:"t_min"`
	TMax  Clock   `yaml:"t_max"`
	Alpha float64 `yaml:"alpha"`
	Beta  float64 `yaml:"beta"`
}

// PowerQcnConfig holds PowerQCN's RTT-gradient modulation thresholds, on
// top of the RttQcnConfig it shares.
type PowerQcnConfig struct {
	RttQcnConfig   `yaml:",inline"`
	GradientLow  float64 `yaml:"gradient_low"`
	GradientHigh float64 `yaml:"gradient_high"`
}

// UfccConfig holds UFCC's RTT thresholds, each a constant offset above
// the QP's running min_rtt.
type UfccConfig struct {
	LowRtt   Clock `yaml:"low_rtt"`
	HighRtt  Clock `yaml:"high_rtt"`
	BurstRtt Clock `yaml:"burst_rtt"`
}

// DefaultConfig returns a Config populated with the defaults named in the
// external-interfaces configuration surface.
func DefaultConfig() Config {
	return Config{
		MinRate:  100 * Mbps,
		LineRate: 100 * Gbps,
		MTU:      1000,
		CCMode:   Dctcp,

		NackInterval:  Clock(500_000),
		L2Chunk:       0,
		L2AckInterval: 0,
		L2BackToZero:  false,

		EwmaGain:        1.0 / 16,
		RateOnFirstCnp:  1.0,
		ClampTargetRate: false,

		RpTimer:              Clock(1_500_000),
		RateDecreaseInterval: Clock(4_000),
		FastRecoveryTimes:    5,
		AlphaResumeInterval:  Clock(55_000),
		Rai:                  5 * Mbps,
		Rhai:                 50 * Mbps,

		VarWin:         false,
		FastReact:      true,
		MiThresh:       5,
		TargetUtil:     0.95,
		UtilHigh:       0.98,
		RateBound:      true,
		MultiRate:      true,
		SampleFeedback: false,

		Timely: TimelyConfig{
			Alpha:  0.875,
			Beta:   0.8,
			TLow:   Clock(50_000),
			THigh:  Clock(500_000),
			MinRtt: Clock(20_000),
		},
		PatchedTimely: PatchedTimelyConfig{
			RTTRef: Clock(500_000),
			Beta:   0.008,
		},
		DctcpRai:       1 * Gbps,
		PintSmplThresh: 65536,
		PintLogBase:    1.1,
		Swift: SwiftConfig{
			Ai:         1000,
			Beta:       0.8,
			MaxMdf:     0.5,
			BaseTarget: Clock(60_000),
			HopScale:   Clock(30_000),
			FsMinCwnd:  1,
			FsMaxCwnd:  128,
			FsRange:    Clock(100_000),
			MinCwnd:    0.001,
			MaxCwnd:    512,
		},
		RttQcn: RttQcnConfig{
			TMin:  Clock(3000),
			TMax:  Clock(5000),
			Alpha: 0.5,
			Beta:  0.25,
		},
		PowerQcn: PowerQcnConfig{
			RttQcnConfig: RttQcnConfig{
				TMin:  Clock(3000),
				TMax:  Clock(5000),
				Alpha: 0.5,
				Beta:  0.25,
			},
			GradientLow:  -0.2,
			GradientHigh: 0.6,
		},
		Ufcc: UfccConfig{
			LowRtt:   Clock(1000),
			HighRtt:  Clock(1500),
			BurstRtt: Clock(6000),
		},
	}
}

// LoadConfig reads a YAML config file and overlays it onto DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("rocecc: read config: %w", err)
	}
	if err = yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("rocecc: parse config: %w", err)
	}
	return cfg, nil
}
