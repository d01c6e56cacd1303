package fdc

// Register is one of the 8-bit status registers of the controller.
type Register byte

// SetBit sets every bit in mask.
func (r *Register) SetBit(mask byte) {
	*r |= Register(mask)
}

// ClearBit clears every bit in mask.
func (r *Register) ClearBit(mask byte) {
	*r &^= Register(mask)
}

// Test reports whether any bit in mask is set.
func (r Register) Test(mask byte) bool {
	return byte(r)&mask != 0
}

// Main status register.
//
//	b0..3  DB  FDD0..3 busy (seek/recalibrate active until sensed)
//	b4     CB  FDC busy (command, execution or result phase)
//	b5     EXM execution mode (non-DMA only)
//	b6     DIO data direction (0=CPU->FDC, 1=FDC->CPU)
//	b7     RQM request for master
const (
	MSRDrive0Busy = 1 << iota
	MSRDrive1Busy
	MSRDrive2Busy
	MSRDrive3Busy
	MSRBusy
	MSRExecution
	MSRDataOut
	MSRRequest
)

// Status register 0.
//
// The interrupt code lives in bits 6 and 7: 00 normal, 01 abnormal
// termination, 10 invalid command, 11 abnormal because the drive changed.
const (
	ST0UnitSelect0 = 1 << iota
	ST0UnitSelect1
	ST0Head
	ST0NotReady
	ST0EquipmentCheck
	ST0SeekEnd
	ST0AbnormalTermination
	ST0InvalidCommand

	ST0InterruptCode = ST0AbnormalTermination | ST0InvalidCommand
)

// Status register 1.
const (
	ST1MissingAddressMark = 1 << iota
	ST1NotWriteable
	ST1NoData
	_
	ST1OverRun
	ST1DataError
	_
	ST1EndOfCylinder
)

// Status register 2.
const (
	ST2MissingDataMark = 1 << iota
	ST2BadCylinder
	ST2ScanNotSatisfied
	ST2ScanEqualHit
	ST2WrongCylinder
	ST2DataErrorInDataField
	ST2ControlMark
)

// Status register 3.
const (
	ST3UnitSelect0 = 1 << iota
	ST3UnitSelect1
	ST3Head
	ST3TwoSide
	ST3TrackZero
	ST3Ready
	ST3WriteProtected
	ST3Fault
)

// Any of these in ST1/ST2 means the command did not complete cleanly, and
// end-of-cylinder is not reported alongside them.
const (
	st1Errors = ST1DataError | ST1MissingAddressMark | ST1NoData | ST1NotWriteable | ST1OverRun
	st2Errors = ST2BadCylinder | ST2ControlMark | ST2DataErrorInDataField |
		ST2MissingDataMark | ST2ScanNotSatisfied | ST2WrongCylinder
)

// Offsets of the standard seven result bytes.
const (
	resST0 = iota
	resST1
	resST2
	resC
	resH
	resR
	resN
)
