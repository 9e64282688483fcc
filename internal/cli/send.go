package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	mimecast "github.com/gh-tking/mimecast-sdk"
)

var (
	sendFrom        string
	sendSubject     string
	sendText        string
	sendHTML        string
	sendCC          []string
	sendBCC         []string
	sendAttachments []string
)

var sendCmd = &cobra.Command{
	Use:   "send <recipient>...",
	Short: "Send an email through the gateway",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient(cmd)
		if err != nil {
			return err
		}

		text := sendText
		if text == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading body from stdin: %w", err)
			}
			text = string(data)
		}

		msg := &mimecast.Message{
			Subject:  sendSubject,
			TextBody: text,
			HTMLBody: sendHTML,
		}
		for _, to := range args {
			msg.To = append(msg.To, mimecast.Address{Email: to})
		}
		for _, cc := range sendCC {
			msg.CC = append(msg.CC, mimecast.Address{Email: cc})
		}
		for _, bcc := range sendBCC {
			msg.BCC = append(msg.BCC, mimecast.Address{Email: bcc})
		}
		if sendFrom != "" {
			msg.From = &mimecast.Address{Email: sendFrom}
		}
		for _, path := range sendAttachments {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading attachment: %w", err)
			}
			msg.Attach(path, data)
		}

		result, err := client.SendEmail(cmd.Context(), msg)
		if err != nil {
			return err
		}

		logger.Info("message accepted", zap.String("message_id", result.MessageID))
		fmt.Println(result.MessageID)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendFrom, "from", "", "sender address")
	sendCmd.Flags().StringVarP(&sendSubject, "subject", "s", "", "message subject")
	sendCmd.Flags().StringVar(&sendText, "text", "", "plain text body, or - to read from stdin")
	sendCmd.Flags().StringVar(&sendHTML, "html", "", "HTML body")
	sendCmd.Flags().StringSliceVar(&sendCC, "cc", nil, "CC recipients")
	sendCmd.Flags().StringSliceVar(&sendBCC, "bcc", nil, "BCC recipients")
	sendCmd.Flags().StringSliceVarP(&sendAttachments, "attach", "a", nil, "files to attach")
	rootCmd.AddCommand(sendCmd)
}
