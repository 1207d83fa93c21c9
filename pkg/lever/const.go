package lever

// MaxPrecision max decimal places of any token amount
const MaxPrecision = 8

// IndexPrecision decimal places of distribution and borrow indices
const IndexPrecision = 16

// SecondsPerBlock logical block length in seconds
const SecondsPerBlock int64 = 15
