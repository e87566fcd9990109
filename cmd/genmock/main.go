// Command genmock writes small deterministic versions of the three NOAA
// Storm Events bulk CSVs for local runs and tests. The fixtures include the
// dirty data the cleaner exists for: padded whitespace, damage suffixes,
// duplicate rows, missing identifiers, out-of-window dates, and a
// Windows-1252 encoded locations file.
//
// Usage:
//
//	genmock -out ./data/mock
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/charmap"
)

const detailsCSV = `EVENT_ID,EVENT_TYPE,BEGIN_YEARMONTH,BEGIN_DAY,BEGIN_TIME,END_YEARMONTH,END_DAY,END_TIME,MAGNITUDE,DAMAGE_PROPERTY,DAMAGE_CROPS
100001,Flood ,202403,15,1510,202403,15,1800,,10.00K,0.00K
100002,Tornado,202404,26,1223,202404,26,1240,2,1.2M,
100002,Tornado,202404,26,1223,202404,26,1240,2,1.2M,
100003,  Hail,202405,8,930,202405,8,945,1.75,,
100004,Flood,202312,30,0600,202312,30,0900,,5.00K,
100005,Heat,202407,1,,,,,,,
,Flood,202403,16,1000,202403,16,1200,,,
100006,Wind,202408,12,2215,202408,12,2230,65,25.00K,1.00K
`

const fatalitiesCSV = `FATALITY_ID,EVENT_ID,FATALITY_TYPE,FATALITY_DATE,FATALITY_AGE,FATALITY_SEX,FATALITY_LOCATION
9001,100002,D,04/26/2024 12:30:00,54,M,Mobile Home
9002,100002,D,04/26/2024 12:31:00,,,MOBILE HOME
9003,100006,I,08/13/2024 09:00:00,71,F,Vehicle/Towed Trailer
9004,999999,D,05/01/2024 00:00:00,30,M,Permanent Home
`

// locationsRows is written through a Windows-1252 encoder to exercise the
// loader's encoding fallback ("CAÑON CITY" carries a non-ASCII byte).
const locationsCSV = `YEARMONTH,EPISODE_ID,EVENT_ID,LOCATION_INDEX,RANGE,AZIMUTH,LOCATION,LATITUDE,LONGITUDE,LAT2,LON2,STATE,CZ_NAME
202403,50001,100001,1,0.5,NNE,CAÑON CITY,38.44,-105.24,3826,10514,COLORADO,FREMONT
202404,50002,100002,1,2.1,SSW,Mcalester,34.96,-95.77,3457,9546,OKLAHOMA,PITTSBURG
202404,50002,100002,2,3.4,S,Mcalester,34.91,-95.75,3454,9545,OKLAHOMA,PITTSBURG
202405,50003,100003,1,0,N, Chappel ,131.02,-98.44,3101,9826,TEXAS,SAN SABA
202408,50004,100006,1,4,N,Dow,34.94,-95.59,3456,9535,OKLAHOMA,PITTSBURG
`

func main() {
	out := flag.String("out", "data/mock", "directory to write fixture CSVs into")
	flag.Parse()

	if err := run(*out); err != nil {
		fmt.Fprintf(os.Stderr, "genmock: %v\n", err)
		os.Exit(1)
	}
}

func run(out string) error {
	if err := os.MkdirAll(out, 0o750); err != nil {
		return err
	}

	files := map[string][]byte{
		"StormEvents_details-2024.csv":    []byte(detailsCSV),
		"StormEvents_fatalities-2024.csv": []byte(fatalitiesCSV),
	}

	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(locationsCSV))
	if err != nil {
		return fmt.Errorf("encode locations fixture: %w", err)
	}
	files["StormEvents_locations-2024.csv"] = encoded

	names := []string{
		"StormEvents_details-2024.csv",
		"StormEvents_fatalities-2024.csv",
		"StormEvents_locations-2024.csv",
	}
	for _, name := range names {
		path := filepath.Join(out, name)
		if err := os.WriteFile(path, files[name], 0o640); err != nil {
			return err
		}
		lines := bytes.Count(files[name], []byte("\n"))
		fmt.Printf("wrote %s (%d rows)\n", path, lines-1)
	}
	return nil
}
