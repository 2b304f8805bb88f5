package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/i94-warehouse/internal/config"
	"github.com/sells-group/i94-warehouse/internal/source"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const (
	immigrationCSV = "cicid,i94yr,i94mon,i94cit,i94res,i94port,arrdate,i94mode,i94addr,depdate,i94visa,biryear,gender,visatype\n" +
		"1.0,2016.0,4.0,692.0,438.0,NYC,20545.0,2.0,NY,20550.0,3.0,1990.0,F,F1\n" +
		"2.0,2016.0,4.0,692.0,692.0,MIA,20546.0,1.0,FL,20560.0,2.0,1985.0,,B2\n" +
		"3.0,2016.0,4.0,999.0,438.0,LOS,20546.0,1.0,CA,20549.0,1.0,1970.0,M,B1\n"

	countryCodesTXT = "code;description\n692;'ECUADOR'\n438;AUSTRALIA\n"

	temperatureCSV = "dt,AverageTemperature,AverageTemperatureUncertainty,City,Country,Latitude,Longitude\n" +
		"1743-11-01,10.0,1.1,Århus,Denmark,57.05N,10.33E\n" +
		"1743-12-01,20.0,1.2,Århus,Denmark,57.05N,10.33E\n" +
		"1744-01-01,,,Århus,Denmark,57.05N,10.33E\n" +
		"1743-11-01,99.0,1.1,Århus,Denmark,57.05N,10.33E\n" +
		"1743-11-01,5.0,0.5,Paris,France,49.03N,2.45E\n"

	demographicsCSV = "City;State;Median Age;Male Population;Female Population;Total Population;Number of Veterans;Foreign-born;Average Household Size;State Code;Race;Count\n" +
		"Los Angeles;California;35.0;50;50;100;;;3.0;CA;White;10\n" +
		"San Diego;California;35.0;100;100;200;;;3.0;CA;Asian;10\n" +
		"Quincy;Massachusetts;41.0;10;20;30;5;7;2.39;MA;White;30\n"

	statesCSV = "State,Latitude,Longitude,City\nCA,36.17,-119.7462,California\n"

	airportsCSV = "ident,type,name,elevation_ft,continent,iso_country,iso_region,municipality,gps_code,iata_code,local_code,coordinates\n" +
		"KLAX,large_airport,Los Angeles International Airport,125,NA,US,US-CA,Los Angeles,KLAX,LAX,LAX,\"-118.4079971, 33.94250107\"\n" +
		"KJFK,large_airport,John F Kennedy International Airport,13,NA,US,US-NY,New York,KJFK,JFK,JFK,\"-73.77890015, 40.63980103\"\n" +
		"00A,heliport,Total Rf Heliport,11,NA,US,US-PA,Bensalem,00A,,00A,\"-74.93360137939453, 40.07080078125\"\n" +
		"CYYZ,large_airport,Toronto Pearson International Airport,569,NA,CA,CA-ON,Toronto,CYYZ,YYZ,,\"-79.63059997559999, 43.6772003174\"\n"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func csvInput(path, delimiter string) config.SourceConfig {
	return config.SourceConfig{Path: path, Format: source.FormatCSV, Delimiter: delimiter, Header: true}
}

// testConfig writes every input fixture into a temp dir and returns a config pointing
// at them with a local output root.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Input: config.InputConfig{
			Immigration:  csvInput(writeFixture(t, dir, "i94.csv", immigrationCSV), ","),
			Temperature:  csvInput(writeFixture(t, dir, "temperature.csv", temperatureCSV), ","),
			Demographics: csvInput(writeFixture(t, dir, "demographics.csv", demographicsCSV), ";"),
			Airports:     csvInput(writeFixture(t, dir, "airports.csv", airportsCSV), ","),
			CountryCodes: csvInput(writeFixture(t, dir, "countries.txt", countryCodesTXT), ";"),
			States:       csvInput(writeFixture(t, dir, "states.csv", statesCSV), ","),
		},
		Output:   config.OutputConfig{Root: filepath.Join(dir, "out")},
		Quality:  config.QualityConfig{OnEmpty: "fail"},
		Airports: config.AirportsConfig{CoordinateOrder: "lonlat", Country: "US"},
		Pipeline: config.PipelineConfig{Concurrency: 2},
		RunLog:   config.RunLogConfig{Driver: "none"},
	}
}
