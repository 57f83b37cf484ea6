package testutil

// SchemesCSV is a vendor scheme holdings export. The first line is a title
// row, so it is read with one skipped row.
const SchemesCSV = `Portfolio holdings as on 31-Mar-2024
Scheme Name,Benchmark,Security Name,Industry,% of Holdings
Alpha Equity Fund,NIFTY50,Infosys Ltd,IT - Software,7.50
Alpha Equity Fund,NIFTY50,HDFC Bank Ltd,Banks,9.25
Alpha Equity Fund,NIFTY50,ITC Ltd,FMCG,N/A
Alpha Equity Fund,NIFTY50,Tata Motors Ltd,Automobiles,3.00
Beta Value Fund,BSE500,Reliance Industries Ltd,Refineries,6.00
Beta Value Fund,BSE500,,Banks,1.00
`

// BenchmarksCSV is an index constituents export holding two indices. It
// starts with two banner lines.
const BenchmarksCSV = `Index constituents
Source: exchange
Index Name,Company Name,Weight(%)
NIFTY50,INFOSYS LTD,5.50
NIFTY50,HDFC BANK LTD,11.00
NIFTY50,Larsen & Toubro Ltd,4.00
BSE500,Reliance Industries Ltd,8.00
`

// VendorActiveCSV is a scheme export that already carries benchmark and
// active weights, with its header on the first line.
const VendorActiveCSV = `Scheme Name,Stock Name,Sector,Fund Weight,Benchmark Weight,Active Weight
Gamma Fund,AAA,Tech,5.0,2.0,3.0
Gamma Fund,BBB,Finance,1.0,4.0,-3.0
Gamma Fund,CCC,Tech,2.0,1.0,N/A
`

// Skip rows matching the fixtures above.
const (
	SchemesSkipRows    = 1
	BenchmarksSkipRows = 2
)
