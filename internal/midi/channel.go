package midi

// Controller numbers this engine interprets. Any CC not listed here is
// accepted (Advance never errors on an unknown controller) but has no
// effect on synthesis.
const (
	CCBankSelectMSB  = 0
	CCModWheel       = 1
	CCVolume         = 7
	CCPan            = 10
	CCExpression     = 11
	CCBankSelectLSB  = 32
	CCSustain        = 64
	CCSostenuto      = 66
	CCReverbSend     = 91
	CCChorusSend     = 93
	CCDataEntryMSB   = 6
	CCDataEntryLSB   = 38
	CCRPNLSB         = 100
	CCRPNMSB         = 101
	CCAllSoundOff    = 120
	CCResetControllers = 121
	CCAllNotesOff    = 123
)

const rpnPitchBendRange = 0x0000

// ChannelState holds one MIDI channel's running controller values and
// captured-note bookkeeping, the way CYmMusic keeps per-channel mixer
// state. Zero value is the power-on default state, except
// PitchBend/PitchBendRangeSemi/Volume/Pan/Expression/ReverbSend and the
// RPN latch, which Reset sets.
type ChannelState struct {
	BankMSB, BankLSB uint8
	Program          uint8

	PitchBend         uint16 // 14-bit, 8192 = center
	PitchBendRangeSemi uint8 // RPN 0 data entry MSB, semitones

	ModWheel     uint8
	Volume       uint8
	Pan          uint8
	Expression   uint8
	ReverbSend   uint8
	ChorusSend   uint8

	Sustain   bool
	Sostenuto bool

	// SustainedNotes holds keys whose NoteOff arrived while the sustain
	// pedal (or, for captured keys, the sostenuto pedal) was held; they
	// are released only when a pedal lifts.
	SustainedNotes    map[uint8]bool
	SostenutoCaptured map[uint8]bool // keys latched at the moment the pedal went down

	// DownNotes tracks keys with an unmatched NoteOn, regardless of
	// pedal state, so CCSostenuto can latch exactly the notes sounding
	// at the instant it is pressed.
	DownNotes map[uint8]bool

	rpnMSB, rpnLSB uint8
}

// Reset restores power-on default controller values: RPN/NRPN reset,
// CC121 handling, initial state.
func (c *ChannelState) Reset() {
	*c = ChannelState{
		PitchBend:          8192,
		PitchBendRangeSemi: 2,
		Volume:             100,
		Pan:                64,
		Expression:         127,
		ReverbSend:         40,
		ChorusSend:         0,
		rpnMSB:             0x7F,
		rpnLSB:             0x7F,
	}
}

func newChannelState() *ChannelState {
	c := &ChannelState{}
	c.Reset()
	return c
}

// bankNumber packs the channel's 14-bit bank select into the
// (bank, program) preset lookup key.
func (c *ChannelState) bankNumber() uint16 {
	return uint16(c.BankMSB)<<7 | uint16(c.BankLSB)
}

// applyControlChange updates channel state for CC number cc with value
// val. It returns nothing and does not handle the sustain/sostenuto
// pedals; Processor.applyCC handles those itself.
func (c *ChannelState) applyControlChange(cc, val uint8) {
	switch cc {
	case CCBankSelectMSB:
		c.BankMSB = val
	case CCBankSelectLSB:
		c.BankLSB = val
	case CCModWheel:
		c.ModWheel = val
	case CCVolume:
		c.Volume = val
	case CCPan:
		c.Pan = val
	case CCExpression:
		c.Expression = val
	case CCReverbSend:
		c.ReverbSend = val
	case CCChorusSend:
		c.ChorusSend = val
	case CCRPNMSB:
		c.rpnMSB = val
	case CCRPNLSB:
		c.rpnLSB = val
	case CCDataEntryMSB:
		if c.rpnMSB == 0 && c.rpnLSB == rpnPitchBendRange {
			c.PitchBendRangeSemi = val
		}
	case CCResetControllers:
		bankMSB, bankLSB, program := c.BankMSB, c.BankLSB, c.Program
		c.Reset()
		c.BankMSB, c.BankLSB, c.Program = bankMSB, bankLSB, program
	}
}
