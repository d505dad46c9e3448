package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"simregistry-backend/config"
	"simregistry-backend/models"
	"simregistry-backend/repository"
	"simregistry-backend/service"
	"simregistry-backend/storage"
)

type fixtureOwner struct {
	name       string
	nik        string
	address    string
	birthDate  string
	birthPlace string
	gender     models.Gender
	occupation string
	heightCM   int
}

// primaryOwners get SIM-<n> and, at even positions, a second SIM-<n+99>
var primaryOwners = []fixtureOwner{
	{"Budi Santoso", "3174051990010001", "Jl. Sudirman No. 123, Jakarta", "1990-01-15", "Jakarta", models.GenderMale, "Karyawan Swasta", 170},
	{"Siti Nurhaliza", "3174052005020002", "Jl. Gatot Subroto No. 45, Jakarta", "2005-02-20", "Bandung", models.GenderFemale, "Mahasiswa", 165},
	{"Ahmad Dhani", "3174051985030003", "Jl. Thamrin No. 78, Jakarta", "1985-03-10", "Surabaya", models.GenderMale, "Wiraswasta", 175},
	{"Dewi Lestari", "3174051992040004", "Jl. Rasuna Said No. 56, Jakarta", "1992-04-25", "Yogyakarta", models.GenderFemale, "Guru", 160},
	{"Rudi Hartono", "3174051988050005", "Jl. HR Rasuna Said No. 12, Jakarta", "1988-05-12", "Semarang", models.GenderMale, "PNS", 172},
}

// additionalOwners always get two licenses, SIM-<200+i> and SIM-<300+i>
var additionalOwners = []fixtureOwner{
	{"Andi Wijaya", "3174051995060006", "Jl. Kebon Sirih No. 34, Jakarta", "1995-06-18", "Medan", models.GenderMale, "Dokter", 178},
	{"Lisa Blackpink", "3174051998070007", "Jl. Senopati No. 89, Jakarta", "1998-07-22", "Solo", models.GenderFemale, "Entertainer", 168},
	{"Joko Widodo", "3174051987080008", "Jl. Kemang Raya No. 67, Jakarta", "1987-08-30", "Palembang", models.GenderMale, "Pengusaha", 173},
	{"Rina Nose", "3174051993090009", "Jl. Pondok Indah No. 23, Jakarta", "1993-09-14", "Bekasi", models.GenderFemale, "Komedian", 162},
	{"Bambang Pamungkas", "3174051991100010", "Jl. Cipete Raya No. 45, Jakarta", "1991-10-05", "Jakarta", models.GenderMale, "Atlet", 176},
}

func main() {
	reset := flag.Bool("reset", false, "drop and recreate the tables before seeding")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := config.NewLogger(cfg.LogLevel)

	ctx := context.Background()
	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer stores.Close()
	if *reset {
		if err := stores.DropSchema(ctx); err != nil {
			log.Fatalf("Failed to clear tables: %v", err)
		}
		log.Println("✓ Cleared existing licenses and owners")
	}
	if err := stores.ApplySchema(ctx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	backend, err := storage.NewStorage(storage.StorageConfig{
		Type:         storage.StorageType(cfg.StorageType),
		LocalPath:    cfg.LocalPath,
		S3Bucket:     cfg.S3Bucket,
		S3Region:     cfg.S3Region,
		AWSAccessKey: cfg.AWSAccessKey,
		AWSSecretKey: cfg.AWSSecretKey,
	})
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	simService := service.NewSIMService(
		service.WithOwnerRepository(stores.Owners),
		service.WithLicenseRepository(stores.Licenses),
		service.WithPhotoStore(storage.NewPhotoStore(backend)),
		service.WithLogger(logger),
	)

	created, skipped := 0, 0
	for _, sub := range fixtureSubmissions(time.Now()) {
		_, err := simService.CreateLicense(ctx, service.CreateLicenseRequest{Submission: sub})
		switch {
		case err == nil:
			created++
			log.Printf("✓ Created license %s for %s", sub.LicenseNumber, sub.Name)
		case errors.Is(err, repository.ErrConstraintViolation):
			skipped++
			log.Printf("License %s already exists, skipping", sub.LicenseNumber)
		default:
			log.Fatalf("Failed to create license %s: %v", sub.LicenseNumber, err)
		}
	}

	owners, err := stores.Owners.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count owners: %v", err)
	}

	fmt.Println("\n✅ Seed data loaded successfully!")
	fmt.Printf("   Licenses created: %d (skipped %d existing)\n", created, skipped)
	fmt.Printf("   Owners in database: %d\n", owners)
}

// fixtureSubmissions builds the seed licenses. Validity periods count
// 365-day years from now.
func fixtureSubmissions(now time.Time) []service.Submission {
	var subs []service.Submission
	for i, owner := range primaryOwners {
		subs = append(subs, owner.license(i+1, now, 5))
		if i%2 == 0 {
			subs = append(subs, owner.license(i+100, now, 3))
		}
	}
	for i, owner := range additionalOwners {
		subs = append(subs,
			owner.license(i+200, now, 4),
			owner.license(i+300, now, 2),
		)
	}
	return subs
}

func (o fixtureOwner) license(number int, now time.Time, validYears int) service.Submission {
	birthDate, err := time.Parse("2006-01-02", o.birthDate)
	if err != nil {
		panic(fmt.Sprintf("fixture %s: %v", o.nik, err))
	}
	address := o.address
	validUntil := now.UTC().Add(time.Duration(validYears) * 365 * 24 * time.Hour).Truncate(24 * time.Hour)

	return service.Submission{
		NIK:           o.nik,
		Name:          o.name,
		Address:       &address,
		BirthPlace:    o.birthPlace,
		BirthDate:     birthDate,
		Gender:        o.gender,
		HeightCM:      o.heightCM,
		Occupation:    o.occupation,
		LicenseNumber: fmt.Sprintf("SIM-%06d", number),
		ValidUntil:    &validUntil,
	}
}
