package sfont

// Generator is a SoundFont 2.0 generator id. There are 59 defined
// generators (0..58); higher ids are rejected at parse time with
// InvalidRange, the same kind an out-of-range key range gets.
type Generator uint16

// The generator ids this engine resolves. Names follow the SoundFont
// 2.0 spec section 8.1.
const (
	GenStartAddrsOffset          Generator = 0
	GenEndAddrsOffset            Generator = 1
	GenStartloopAddrsOffset      Generator = 2
	GenEndloopAddrsOffset        Generator = 3
	GenStartAddrsCoarseOffset    Generator = 4
	GenModLFOToPitch             Generator = 5
	GenVibLFOToPitch             Generator = 6
	GenModEnvToPitch             Generator = 7
	GenInitialFilterFc           Generator = 8
	GenInitialFilterQ            Generator = 9
	GenModLFOToFilterFc          Generator = 10
	GenModEnvToFilterFc          Generator = 11
	GenEndAddrsCoarseOffset      Generator = 12
	GenModLFOToVolume            Generator = 13
	GenUnused1                   Generator = 14
	GenChorusEffectsSend         Generator = 15
	GenReverbEffectsSend         Generator = 16
	GenPan                       Generator = 17
	GenUnused2                   Generator = 18
	GenUnused3                   Generator = 19
	GenUnused4                   Generator = 20
	GenDelayModLFO               Generator = 21
	GenFreqModLFO                Generator = 22
	GenDelayVibLFO               Generator = 23
	GenFreqVibLFO                Generator = 24
	GenDelayModEnv                Generator = 25
	GenAttackModEnv               Generator = 26
	GenHoldModEnv                 Generator = 27
	GenDecayModEnv                Generator = 28
	GenSustainModEnv              Generator = 29
	GenReleaseModEnv              Generator = 30
	GenKeynumToModEnvHold         Generator = 31
	GenKeynumToModEnvDecay        Generator = 32
	GenDelayVolEnv                Generator = 33
	GenAttackVolEnv               Generator = 34
	GenHoldVolEnv                 Generator = 35
	GenDecayVolEnv                Generator = 36
	GenSustainVolEnv              Generator = 37
	GenReleaseVolEnv              Generator = 38
	GenKeynumToVolEnvHold         Generator = 39
	GenKeynumToVolEnvDecay        Generator = 40
	GenInstrument                 Generator = 41
	GenReserved1                  Generator = 42
	GenKeyRange                   Generator = 43
	GenVelRange                   Generator = 44
	GenStartloopAddrsCoarseOffset Generator = 45
	GenKeynum                     Generator = 46
	GenVelocity                   Generator = 47
	GenInitialAttenuation         Generator = 48
	GenReserved2                  Generator = 49
	GenEndloopAddrsCoarseOffset   Generator = 50
	GenCoarseTune                 Generator = 51
	GenFineTune                   Generator = 52
	GenSampleID                   Generator = 53
	GenSampleModes                Generator = 54
	GenReserved3                  Generator = 55
	GenScaleTuning                Generator = 56
	GenExclusiveClass             Generator = 57
	GenOverridingRootKey          Generator = 58

	NumGenerators = 59
)

// Sample mode values for GenSampleModes.
const (
	SampleModeNoLoop            = 0
	SampleModeLoop              = 1
	SampleModeLoopUntilRelease  = 2 // reserved value 2 behaves as no-loop per spec; 3 is loop-until-release
	SampleModeLoopContinue      = 3
)

// GeneratorSet is the effective value for every generator, always
// fully populated: every generator has a defined value after merge,
// defaulted or not.
type GeneratorSet [NumGenerators]int16

// defaultGenerators holds the SoundFont 2.0 default value for every
// generator that has a non-zero default. Unlisted generators default
// to zero.
var defaultGenerators = GeneratorSet{
	GenInitialFilterFc: 13500,
	GenDelayModLFO:      -12000,
	GenDelayVibLFO:      -12000,
	GenDelayModEnv:      -12000,
	GenAttackModEnv:     -12000,
	GenHoldModEnv:       -12000,
	GenDecayModEnv:      -12000,
	GenReleaseModEnv:    -12000,
	GenDelayVolEnv:      -12000,
	GenAttackVolEnv:     -12000,
	GenHoldVolEnv:       -12000,
	GenDecayVolEnv:      -12000,
	GenReleaseVolEnv:    -12000,
	GenKeyRange:         0x7F00, // lo=0, hi=127
	GenVelRange:         0x7F00,
	GenKeynum:           -1,
	GenVelocity:         -1,
	GenScaleTuning:      100,
	GenOverridingRootKey: -1,
}

// NewDefaultGeneratorSet returns the generator set seeded with
// SoundFont 2.0 defaults (merge step 1).
func NewDefaultGeneratorSet() GeneratorSet {
	return defaultGenerators
}

// additiveClamp bounds a generator value after it has had a preset-level
// offset added to it (merge steps 4/5). Generators that
// are not meaningfully "additive" (ranges, sample offsets, instrument
// and sampleID references) are left unclamped here; callers never add
// preset-level offsets to those ids.
func additiveClamp(id Generator, v int32) int16 {
	switch id {
	case GenInitialFilterFc:
		return clamp16(v, 1500, 13500)
	case GenInitialFilterQ:
		return clamp16(v, 0, 960)
	case GenInitialAttenuation:
		return clamp16(v, 0, 1440)
	case GenPan:
		return clamp16(v, -500, 500)
	case GenScaleTuning:
		return clamp16(v, 0, 1200)
	default:
		return clamp16(v, -32768, 32767)
	}
}

func clamp16(v int32, lo, hi int32) int16 {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return int16(v)
}

// Overlay applies src's generators onto the receiver, overwriting
// (not adding) any generator present in src. Used for instrument-level
// global/local zone layering (merge steps 2/3).
func (g *GeneratorSet) Overlay(src map[Generator]int16) {
	for id, v := range src {
		g[id] = v
	}
}

// OverlayAdditive adds src's generators onto the receiver as offsets,
// clamping per generator (merge steps 4/5). Range-type
// and reference generators (key/vel range, instrument, sampleID) must
// never appear in an additive overlay and are skipped defensively.
func (g *GeneratorSet) OverlayAdditive(src map[Generator]int16) {
	for id, v := range src {
		switch id {
		case GenKeyRange, GenVelRange, GenInstrument, GenSampleID:
			continue
		}
		g[id] = additiveClamp(id, int32(g[id])+int32(v))
	}
}

// KeyRange returns the (lo, hi) MIDI key bounds encoded in GenKeyRange.
func (g GeneratorSet) KeyRange() (lo, hi uint8) {
	return uint8(g[GenKeyRange] & 0xFF), uint8(g[GenKeyRange] >> 8)
}

// VelRange returns the (lo, hi) velocity bounds encoded in GenVelRange.
func (g GeneratorSet) VelRange() (lo, hi uint8) {
	return uint8(g[GenVelRange] & 0xFF), uint8(g[GenVelRange] >> 8)
}
