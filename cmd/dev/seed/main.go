package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"outingpass/internal/directory"
	"outingpass/pkg/config"
	"outingpass/pkg/db"
)

// seed creates a staff account and, optionally, a student profile so a fresh
// database can be logged into.
func main() {
	var (
		username = flag.String("username", "admin", "staff username")
		password = flag.String("password", "", "staff password (min 8 chars)")
		role     = flag.String("role", "superadmin", "staff|warden|superadmin|gate")
		hostels  = flag.String("hostels", "", "comma-separated hostels the account may act on")
		student  = flag.String("student", "", "optional student email to upsert")
		hostel   = flag.String("student-hostel", "", "student hostel")
		parent   = flag.String("parent-email", "", "student parent email")
	)
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "missing -password")
		os.Exit(2)
	}
	r, err := directory.ParseRole(*role)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	hash, err := directory.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := config.Load()
	ctx := context.Background()
	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := directory.NewRepository(pool)

	var hs []string
	for _, h := range strings.Split(*hostels, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hs = append(hs, h)
		}
	}
	s, err := repo.CreateStaff(ctx, directory.Staff{Username: *username, Role: r, Hostels: hs, PasswordHash: hash})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create staff: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("staff created id=%s username=%s role=%s\n", s.ID, s.Username, s.Role)

	if *student != "" {
		if err := repo.UpsertStudent(ctx, directory.Student{
			Email:       strings.ToLower(*student),
			HostelName:  *hostel,
			ParentEmail: *parent,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "upsert student: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("student upserted email=%s\n", *student)
	}
}
