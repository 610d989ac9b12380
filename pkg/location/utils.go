package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"googlemaps.github.io/maps"
)

// RadioScanner lists the radios a geolocation request can be built from.
type RadioScanner interface {
	WiFiAccessPoints(ctx context.Context) ([]maps.WiFiAccessPoint, error)
	CellTowers(ctx context.Context, modemIndex int) ([]maps.CellTower, error)
}

// CommandRadioScanner uses NetworkManager and ModemManager command line tools.
type CommandRadioScanner struct{}

func (CommandRadioScanner) WiFiAccessPoints(ctx context.Context) ([]maps.WiFiAccessPoint, error) {
	out, err := runTool(ctx, "nmcli", "-t", "-f", "BSSID,SIGNAL", "dev", "wifi", "list")
	if err != nil {
		return nil, err
	}
	return parseWiFiList(out)
}

func (CommandRadioScanner) CellTowers(ctx context.Context, modemIndex int) ([]maps.CellTower, error) {
	out, err := runTool(ctx, "mmcli", "-m", strconv.Itoa(modemIndex), "--output-keyvalue")
	if err != nil {
		return nil, err
	}
	return parseModemInfo(out)
}

func runTool(ctx context.Context, name string, args ...string) (string, error) {
	if _, err := exec.LookPath(name); err != nil {
		return "", fmt.Errorf("%s not found: %w", name, err)
	}
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", name, err)
	}
	return string(out), nil
}

// parseWiFiList reads terse nmcli output. nmcli escapes the colons inside
// the BSSID, so each line looks like `AA\:BB\:CC\:DD\:EE\:FF:72`.
func parseWiFiList(out string) ([]maps.WiFiAccessPoint, error) {
	var aps []maps.WiFiAccessPoint
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.ReplaceAll(scanner.Text(), `\:`, "-")
		bssid, signal, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		mac := strings.ReplaceAll(strings.TrimSpace(bssid), "-", ":")
		if !isValidMAC(mac) {
			continue
		}
		strength, err := strconv.Atoi(strings.TrimSpace(signal))
		if err != nil {
			continue
		}
		aps = append(aps, maps.WiFiAccessPoint{
			MACAddress:     mac,
			SignalStrength: float64(strength),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return aps, nil
}

// parseModemInfo extracts the serving cell from `mmcli --output-keyvalue`.
func parseModemInfo(out string) ([]maps.CellTower, error) {
	var tower maps.CellTower
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)

		switch key {
		case "modem.3gpp.mcc":
			if v, err := strconv.Atoi(value); err == nil {
				tower.MobileCountryCode = v
			}
		case "modem.3gpp.mnc":
			if v, err := strconv.Atoi(value); err == nil {
				tower.MobileNetworkCode = v
			}
		case "modem.3gpp.lac":
			if v, err := strconv.ParseInt(value, 16, 32); err == nil {
				tower.LocationAreaCode = int(v)
			}
		case "modem.3gpp.cid":
			if v, err := strconv.ParseInt(value, 16, 32); err == nil {
				tower.CellID = int(v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if tower.MobileCountryCode == 0 || tower.MobileNetworkCode == 0 {
		return nil, errors.New("incomplete cell tower data")
	}
	return []maps.CellTower{tower}, nil
}

func isValidMAC(mac string) bool {
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return false
	}
	for _, part := range parts {
		if len(part) != 2 {
			return false
		}
		if _, err := strconv.ParseUint(part, 16, 8); err != nil {
			return false
		}
	}
	return true
}
