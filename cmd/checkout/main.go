package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"astryxnodes/internal/checkout"
	"astryxnodes/internal/domain"
	"astryxnodes/internal/dto"
	"astryxnodes/internal/infrastructure/logger"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "checkout:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("checkout", pflag.ContinueOnError)
	server := fs.String("server", "http://localhost:5000", "checkout server base URL")
	timeout := fs.Duration("timeout", 30*time.Second, "overall request timeout")
	plan := fs.String("plan", "", "plan name, e.g. Basic")
	price := fs.String("price", "", "plan price in PHP, e.g. 150")
	ram := fs.String("ram", "", "plan RAM")
	cpu := fs.String("cpu", "", "plan CPU")
	disk := fs.String("disk", "", "plan disk")
	name := fs.String("name", "", "customer name")
	email := fs.String("email", "", "customer email")
	phone := fs.String("phone", "", "customer phone")
	discord := fs.String("discord", "", "customer Discord handle (optional)")
	method := fs.String("method", "", "payment method: gcash, maya, bank or stripe")
	paymentMethod := fs.String("card-payment-method", "pm_card_visa", "Stripe payment method used to confirm card payments")
	verbose := fs.BoolP("verbose", "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if *plan == "" || *price == "" {
		return errors.New("--plan and --price are required")
	}

	log, err := logger.NewConsole(*verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	api := checkout.NewClient(*server, *timeout)

	var confirmer checkout.CardConfirmer
	if domain.PaymentMethod(*method) == domain.PaymentMethodStripe {
		key, err := api.StripeKey(ctx)
		if err != nil {
			return fmt.Errorf("fetching publishable key: %w", err)
		}
		if key != "" {
			confirmer = checkout.NewStripeConfirmer(key, *paymentMethod)
		}
	}

	session := checkout.NewSession(api, confirmer, dto.OrderInfo{
		Plan:  *plan,
		Price: *price,
		RAM:   *ram,
		CPU:   *cpu,
		Disk:  *disk,
	}, log)
	defer session.Close()

	if err := session.SetCustomer(checkout.Customer{
		Name:    *name,
		Email:   *email,
		Phone:   *phone,
		Discord: *discord,
	}); err != nil {
		return err
	}
	if *method != "" {
		if err := session.SelectPaymentMethod(domain.PaymentMethod(*method)); err != nil {
			return err
		}
	}

	receipt, err := session.Submit(ctx)
	if err != nil {
		return err
	}
	log.Debug("order placed", zap.String("orderNumber", receipt.OrderNumber))

	fmt.Printf("Order Number:   %s\n", receipt.OrderNumber)
	fmt.Printf("Plan:           %s\n", *plan)
	fmt.Printf("Amount:         ₱%s\n", *price)
	fmt.Printf("Payment Method: %s\n", checkout.MethodName(receipt.PaymentMethod))
	if receipt.PaymentID != "" {
		fmt.Printf("Payment ID:     %s\n", receipt.PaymentID)
	}

	if receipt.PaymentMethod.Manual() {
		cfg, err := api.PaymentConfig(ctx)
		if err != nil {
			log.Warn("could not load payment details", zap.Error(err))
		}
		fmt.Println()
		for _, line := range checkout.Instructions(receipt, cfg) {
			fmt.Println(line)
		}
	}

	return nil
}
