// Package domain models Oklahoma Mesonet observation files.
//
// # Data Source
//
// The Oklahoma Mesonet publishes its five-minute observations as fixed-format
// text files served from http://www.mesonet.org/public/data/getfile.php. Two
// kinds of file exist:
//
//	Snapshot (MDF):    one instant, every station in the network.
//	                   /mdf/2008/11/20/200811201405.mdf
//	Time series (MTS): one station, every instant of a UTC day.
//	                   /mts/2008/11/20/20081120nrmn.mts
//
// Directory components use unpadded month and day. Snapshot files exist only
// on five-minute boundaries, so [BuildAddress] floors the minute before
// formatting. Station identifiers are lower-cased in time-series filenames.
//
// # Record Layout
//
// Every file starts with three header lines (copyright banner, base date,
// column names) followed by one whitespace-delimited row per observation:
//
//	  101 ! (c) 2008 Oklahoma Climatological Survey - all rights reserved
//	 2008 11 20 00 00 00
//	 STID  STNM  TIME   RELH   TAIR   WSPD ...
//	 NRMN   140   845     55   20.0    4.1 ...
//
// Columns always appear in the order of [Variables]. TIME counts minutes after
// 00 UTC of the base date.
//
// # Missing Values
//
// Values below -990 (the provider writes -994 through -999) mark data that
// was not collected or failed quality control. They are kept in place and
// flagged in the [MaskedTable] mask; -990 itself is a valid value.
package domain
