package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/common-nighthawk/go-figure"
	bannercolor "github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/smart-field/smart-field-api-poc/internal/cog"
	"github.com/smart-field/smart-field-api-poc/internal/delivery"
	"github.com/smart-field/smart-field-api-poc/internal/health"
	"github.com/smart-field/smart-field-api-poc/internal/imagery"
	"github.com/smart-field/smart-field-api-poc/internal/notification"
	"github.com/smart-field/smart-field-api-poc/internal/properties"
)

func printBanner() {
	figure1 := figure.NewFigure("Smart", "isometric1", true)
	figure2 := figure.NewFigure("Field", "isometric1", true)
	bannercolor.Green(figure1.String())
	bannercolor.Green(figure2.String())
	fmt.Println()
}

func listOrthomosaics() ([]string, error) {
	folder := fmt.Sprintf("%s/data/orthomosaics", properties.RootPath())
	files, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, file := range files {
		if strings.HasSuffix(file.Name(), ".tif") || strings.HasSuffix(file.Name(), ".tiff") {
			names = append(names, file.Name())
		}
	}
	return names, nil
}

func chooseOrthomosaic() (string, bool) {
	names, err := listOrthomosaics()
	if err != nil {
		fmt.Printf("\n\033[31mError reading orthomosaics folder: %s\033[0m\n", err.Error())
		return "", false
	}
	if len(names) == 0 {
		fmt.Printf("\n\033[31mNo orthomosaics found in data/orthomosaics.\033[0m\n")
		return "", false
	}

	fmt.Println("\033[32m\nAvailable orthomosaics:\033[0m")
	for i, name := range names {
		fmt.Printf("\033[32m%d. %s\033[0m\n", i+1, name)
	}

	fmt.Print("\033[34mEnter the number of the orthomosaic: \033[0m")
	var choice int
	if _, err := fmt.Scan(&choice); err != nil || choice < 1 || choice > len(names) {
		fmt.Printf("\n\033[31mInvalid choice. Please select a valid number.\033[0m\n")
		return "", false
	}
	return names[choice-1], true
}

func initCLI() {
	defer func() {
		if r := recover(); r != nil {
			pc, file, line, ok := runtime.Caller(3)
			var location string
			if ok {
				fn := runtime.FuncForPC(pc)
				location = fmt.Sprintf("%s:%d in %s", file, line, fn.Name())
			} else {
				location = "Unknown location"
			}

			fmt.Printf("\n\033[31mPANIC: %v\033[0m\n", r)
			fmt.Printf("\033[31mLocation: %s\033[0m\n", location)
			fmt.Printf("\033[31mPlease check the input and try again.\033[0m\n")
			fmt.Printf("\033[31mExiting...\033[0m\n")

			stack := debug.Stack()
			errMessage := fmt.Sprintf("Smart Field CLI panic:\n\n%v\n\nLocation: %s\n\nStack trace:\n%s", r, location, stack)
			err := notification.SendDiscordErrorNotification(errMessage)
			if err != nil {
				fmt.Printf("\033[31mFailed to send notification: %s\033[0m\n", err.Error())
			}
		}
	}()
	printBanner()

	for {
		fmt.Println("\033[34m===================\033[0m")
		fmt.Println("\033[34m1. Analyze an orthomosaic (NDVI, NDWI, EVI overlays)\033[0m")
		fmt.Println("\033[34m2. Convert an orthomosaic to Cloud-Optimized GeoTIFF\033[0m")
		fmt.Println("\033[34m3. Import sensor readings and score field health\033[0m")
		fmt.Println("\033[34m4. Download an orthomosaic from the imagery API\033[0m")
		fmt.Println("\033[34m5. List available orthomosaics\033[0m")
		fmt.Println("\033[34m6. Exit\033[0m")
		fmt.Println("\033[34mEnter your choice:\033[0m")

		var choice int
		_, err := fmt.Scan(&choice)
		if err != nil {
			fmt.Printf("\n\033[31mInvalid input. Please enter a number.\033[0m\n")
			fmt.Scanln()
			continue
		}

		switch choice {
		case 1:
			name, ok := chooseOrthomosaic()
			if !ok {
				continue
			}

			cfg := delivery.DefaultConfig()
			fmt.Printf("\033[34mEnter the decimation factor for preview reads (default %d): \033[0m", cfg.Decimation)
			var decimation int
			if _, err := fmt.Scan(&decimation); err == nil && decimation >= 1 {
				cfg.Decimation = decimation
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			result, err := delivery.AnalyzeOrthomosaic(ctx, name, cfg)
			stop()
			if err != nil {
				fmt.Printf("\n\033[31mError analyzing orthomosaic: %s\033[0m\n", err.Error())
				notification.SendDiscordErrorNotification(fmt.Sprintf("Smart Field CLI\n\nError analyzing orthomosaic %s: %s", name, err.Error()))
				continue
			}

			fmt.Printf("\n\033[32mSuccessful analysis!\n Index rasters: %s\n Overlays: %s\033[0m\n",
				strings.Join(result.IndexRasters, ", "), strings.Join(result.Overlays, ", "))
			notification.SendDiscordSuccessNotification(fmt.Sprintf("Smart Field CLI\n\nSuccessful analysis of %s!\nIndex rasters: %s\nOverlays: %s",
				name, strings.Join(result.IndexRasters, ", "), strings.Join(result.Overlays, ", ")))
		case 2:
			name, ok := chooseOrthomosaic()
			if !ok {
				continue
			}

			profile := cog.Profile{TileSize: cog.DefaultTileSize, Compression: cog.DefaultCompression}
			fmt.Printf("\033[34mEnter the tile size (default %d): \033[0m", profile.TileSize)
			var tileSize int
			if _, err := fmt.Scan(&tileSize); err == nil && tileSize > 0 {
				profile.TileSize = tileSize
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			outputPath, err := delivery.ConvertToCOG(ctx, name, profile)
			stop()
			if err != nil {
				fmt.Printf("\n\033[31mError creating COG: %s\033[0m\n", err.Error())
				notification.SendDiscordErrorNotification(fmt.Sprintf("Smart Field CLI\n\nError creating COG for %s: %s", name, err.Error()))
				continue
			}

			fmt.Printf("\n\033[32mCOG created successfully at: %s\033[0m\n", outputPath)
			notification.SendDiscordSuccessNotification(fmt.Sprintf("Smart Field CLI\n\nCOG created successfully!\n\nFile: %s", outputPath))
		case 3:
			fmt.Println("\033[33m\nWarning:\033[0m")
			fmt.Println("\033[33mThe input data should be a '.csv' file present in data/sensor_input folder.\033[0m")
			fmt.Println("\033[33mThe resultant GeoJSON and health CSV will be created at data/result folder.\n\033[0m")

			fmt.Print("\033[34mEnter input data file name: \033[0m")
			var inputDataFileName string
			fmt.Scanln(&inputDataFileName)

			geojsonPath, csvPath, err := delivery.ImportSensorData(inputDataFileName, health.DefaultTables())
			if err != nil {
				fmt.Printf("\n\033[31mError importing sensor data: %s\033[0m\n", err.Error())
				continue
			}
			fmt.Printf("\n\033[32mSensor data imported successfully!\n GeoJSON: %s\n Health CSV: %s\033[0m\n", geojsonPath, csvPath)
		case 4:
			reader := bufio.NewReader(os.Stdin)
			fmt.Print("\033[34mEnter the field name: \033[0m")
			fieldName, _ := reader.ReadString('\n')
			fieldName = strings.TrimSpace(fieldName)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			outputPath, err := imagery.Download(ctx, fieldName)
			stop()
			if err != nil {
				fmt.Printf("\n\033[31mError downloading orthomosaic: %s\033[0m\n", err.Error())
				continue
			}
			fmt.Printf("\n\033[32mOrthomosaic downloaded to: %s\033[0m\n", outputPath)
		case 5:
			names, err := listOrthomosaics()
			if err != nil {
				fmt.Printf("\n\033[31mError reading orthomosaics folder: %s\033[0m\n", err.Error())
				continue
			}
			fmt.Println("\033[33m\nWarning:\033[0m")
			fmt.Println("\033[33mTo add a new orthomosaic, place its '.tif' file at 'data/orthomosaics' folder.\033[0m")

			fmt.Println("\n\033[32mAvailable orthomosaics:\033[0m")
			for _, name := range names {
				fmt.Printf("\033[32m- %s\033[0m\n", name)
			}
		case 6:
			println("Exiting...")
			return
		default:
			println("Invalid choice. Please try again.")
		}
	}
}

func main() {
	err := godotenv.Load("../../.env")
	if err != nil {
		err := godotenv.Load("../.env")
		if err != nil {
			panic(err)
		}
	}

	godal.RegisterInternalDrivers()
	initCLI()
}
